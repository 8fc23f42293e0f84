/*
Package waypoint is the state core of a product-tour demo: a landing view, a
step-by-step tour viewer and a form-based editor that authors new tour steps.

One Tour owns all the state of one session. Every intent is a single atomic
state replacement; view changes and submissions are two-phase and commit after
a short cosmetic delay, returning a Pending handle that resolves on commit.

# Usage

	eng, err := waypoint.New(waypoint.WithStarterTour())
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	tour := eng.NewTour("session-123")

	p, _ := tour.StartDemo(ctx)
	p.Wait(ctx)
	tour.Next(ctx)

	if _, err := eng.SelectTemplate(ctx, tour, "power-user-tip"); err != nil {
		log.Fatal(err)
	}
	step, _ := tour.Submit(ctx)
	s, _ := step.Wait(ctx)
	fmt.Println(s.ID, s.Title)

# Surfaces

The same Tour is driven by the HTTP API (pkg/adapters/http), the MCP tool
server (pkg/adapters/mcp) and the terminal player (pkg/runner). Sessions are
owned by pkg/session, which mirrors snapshots into a ports.SessionStore.
*/
package waypoint
