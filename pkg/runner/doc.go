/*
Package runner implements the terminal tour player.

It is the bridge between a tour's application state and a line-oriented
front end: it renders the current view, reads player commands, turns them
into intents and waits for delayed commits before rendering again.

# Key Components

  - Runner: the read-apply-render loop.
  - IOHandler: decouples how state is shown and commands are read.
  - TextHandler: interactive terminal use, optionally through a markdown renderer.
  - JSONHandler: JSON-Lines for scripted or headless use.
  - Interceptor: policy hook that can veto destructive commands.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithTemplates(eng.Templates()),
	)

	if err := r.Run(ctx, eng.NewTour("local")); err != nil {
		log.Fatal(err)
	}
*/
package runner
