// Command crowdsim-demo assembles and runs a corridor evacuation scenario
// from a YAML config file, logging periodic snapshot summaries through
// simlog (slog's default logger, which writes to stderr) and printing a
// final summary line to stdout. It mirrors
// the teacher's simpleScene demo: a scene-setup function, a run loop, and a
// terminal report, without the 3D debug-hook machinery a narrow-phase
// collision demo needed and this domain does not.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/akmonengine/crowdsim/agent"
	"github.com/akmonengine/crowdsim/config"
	"github.com/akmonengine/crowdsim/integrate"
	"github.com/akmonengine/crowdsim/nav"
	"github.com/akmonengine/crowdsim/obstacle"
	"github.com/akmonengine/crowdsim/scenario"
	"github.com/akmonengine/crowdsim/sim"
	"github.com/akmonengine/crowdsim/simlog"
	"github.com/akmonengine/crowdsim/vec2"
)

func main() {
	configPath := flag.String("config", "", "path to a scenario YAML file (required)")
	steps := flag.Int("steps", 1000, "number of simulation steps to run")
	workers := flag.Int("workers", 4, "worker count for the parallel interaction reduction")
	reportEvery := flag.Int("report-every", 100, "log a snapshot summary every N steps")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: crowdsim-demo -config scenario.yaml")
		os.Exit(2)
	}

	f, err := os.Open(*configPath)
	if err != nil {
		simlog.Logger().Error("failed to open config", "err", err)
		os.Exit(1)
	}
	defer f.Close()

	cfg, err := config.Load(f)
	if err != nil {
		simlog.Logger().Error("failed to parse config", "err", err)
		os.Exit(1)
	}

	s, navField, err := setupScene(cfg)
	if err != nil {
		simlog.Logger().Error("failed to assemble scenario", "err", err)
		os.Exit(1)
	}

	simulation := sim.New(s, obstacle.NewStore(corridorWalls()), navField, sim.Params{
		StepBounds:       integrate.StepBounds{DtMin: cfg.Simulation.DtMin, DtMax: cfg.Simulation.DtMax},
		CellSize:         2*maxRadius(s) + cfg.Tunables.SightSoc,
		Workers:          *workers,
		NeighborCapacity: cfg.Simulation.NeighborCapacity,
		NeighborRadius:   cfg.Simulation.NeighborRadius,
	}, cfg.Simulation.Seed)

	deactivated := 0
	simulation.Subscribe(sim.AgentDeactivated, func(sim.Event) { deactivated++ })

	for step := 0; step < *steps; step++ {
		snap, err := simulation.Step()
		if err != nil {
			simlog.Logger().Error("simulation halted", "step", step, "err", err)
			os.Exit(1)
		}
		if (step+1)%*reportEvery == 0 {
			simlog.Logger().Info("snapshot",
				"step", step+1,
				"dt", snap.DtUsed,
				"time_total", simulation.TimeTotal,
				"active", len(s.ActiveIndices()),
				"deactivated", deactivated,
			)
		}
	}

	fmt.Printf("ran %d steps, simulated time %.2fs, %d agents reached the exit\n",
		*steps, simulation.TimeTotal, deactivated)
}

// corridorWalls lays out a straight 10m-wide, 20m-long corridor: two
// parallel walls running the length of the x-axis.
func corridorWalls() [][2]vec2.Vec2 {
	return [][2]vec2.Vec2{
		{{0, 0}, {20, 0}},
		{{0, 10}, {20, 10}},
	}
}

// setupScene builds the agent store for one population: a body type sampled
// per cfg.BodyType, placed without overlap in the corridor's left half,
// heading toward the right wall.
func setupScene(cfg *config.Scenario) (*agent.Store, *nav.Field, error) {
	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))

	model := agent.Circular
	if cfg.ThreeCircle {
		model = agent.ThreeCircle
	}
	s := agent.NewStore(model, cfg.PopulationSize)

	bt := scenario.BodyTypeMeans{
		Mass: cfg.BodyType.Mass, MassScale: cfg.BodyType.MassScale,
		Radius: cfg.BodyType.Radius, RadiusScale: cfg.BodyType.RadiusScale,
		KTorso: cfg.BodyType.KTorso, KShoulder: cfg.BodyType.KShoulder,
		KTorsoShoulder: cfg.BodyType.KTorsoShoulder,
		InertiaRot:     cfg.BodyType.InertiaRot,
		TargetVelocity: cfg.BodyType.TargetVelocity,
	}

	radii := make([]float64, cfg.PopulationSize)
	bodies := make([]scenario.SampledBody, cfg.PopulationSize)
	for i := range bodies {
		bodies[i] = scenario.SampleBody(rng, bt)
		radii[i] = bodies[i].Radius
	}

	walls := make([]obstacle.Obstacle, len(corridorWalls()))
	for i, seg := range corridorWalls() {
		walls[i] = obstacle.New(seg[0], seg[1])
	}

	positions, err := scenario.RandomPositions(rng, radii,
		scenario.Limits{Min: 1, Max: 8}, scenario.Limits{Min: 1, Max: 9}, walls)
	if err != nil {
		return nil, nil, err
	}

	tun := agentTunables(cfg.Tunables)
	for i, body := range bodies {
		params := agent.CircularParams{
			Mass: body.Mass, Radius: body.Radius,
			Position: positions[i], TargetVelocity: bt.TargetVelocity,
			TargetDirection: vec2.Vec2{1, 0},
			Tunable:         tun,
		}
		if cfg.ThreeCircle {
			if _, err := s.AddThreeCircle(agent.ThreeCircleParams{
				CircularParams: params,
				InertiaRot:     bt.InertiaRot,
				Geometry: agent.ThreeCircleGeometry{
					RTorso: body.RTorso, RShoulder: body.RShoulder, RTorsoShoulder: body.RTorsoShoulder,
				},
			}); err != nil {
				return nil, nil, err
			}
		} else {
			s.AddCircular(params)
		}
	}

	navField, err := buildNavField(cfg, walls)
	if err != nil {
		return nil, nil, err
	}
	return s, navField, nil
}

// buildNavField discretizes the corridor and solves the Eikonal field
// toward a target column at the right wall, using the obstacle cells
// derived from the corridor walls' proximity.
func buildNavField(cfg *config.Scenario, walls []obstacle.Obstacle) (*nav.Field, error) {
	step := cfg.Navigation.Step
	if step <= 0 {
		step = 0.1
	}
	rows := int(10/step) + 1
	cols := int(20/step) + 1

	f := nav.NewGrid(vec2.Vec2{0, 0}, step, rows, cols)

	var targetCells, obstacleCells []int
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			p := vec2.Vec2{float64(col) * step, float64(row) * step}
			cell := row*cols + col

			if col == cols-1 {
				targetCells = append(targetCells, cell)
			}
			if nearAnyWall(p, step, walls) {
				obstacleCells = append(obstacleCells, cell)
			}
		}
	}

	if err := f.Solve(targetCells, obstacleCells, cfg.Navigation.Value, cfg.Navigation.Radius); err != nil {
		return nil, err
	}
	return f, nil
}

func nearAnyWall(p vec2.Vec2, step float64, walls []obstacle.Obstacle) bool {
	for _, w := range walls {
		rel := p.Sub(w.P0)
		l := vec2.Dot(rel, w.Tangent)
		if l < 0 || l > w.Length {
			continue
		}
		d := vec2.Dot(rel, w.Normal)
		if d < 0 {
			d = -d
		}
		if d < step {
			return true
		}
	}
	return false
}

func maxRadius(s *agent.Store) float64 {
	max := 0.0
	for _, r := range s.Radius {
		if r > max {
			max = r
		}
	}
	return max
}

func agentTunables(t config.Tunables) agent.Tunables {
	return agent.Tunables{
		TauAdj: t.TauAdj, KSoc: t.KSoc, Tau0: t.Tau0,
		Mu: t.Mu, Kappa: t.Kappa, Damping: t.Damping,
		StdRandForce:   t.StdRandForce,
		SightSoc:       t.SightSoc,
		SightWall:      t.SightWall,
		ForceSocialMax: t.ForceSocialMax,
		ForceWallMax:   t.ForceWallMax,
		ForceTotalMax:  t.ForceTotalMax,
		TauRot:         t.TauRot,
		StdRandTorque:  t.StdRandTorque,
	}
}
