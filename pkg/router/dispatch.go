package router

import "strings"

const usage = "Commands: `import <locator>`, `list`, `spawn <name>`, `message <name> <text>`, `remove <name>`"

// Dispatch parses a raw command line and routes it to the right operation.
// Validation here is purely syntactic; name/locator semantics are checked by
// the operations themselves.
func (r *Router) Dispatch(actor Actor, input string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		r.notifier.Error(actor, usage)
		return
	}

	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "import":
		if len(args) != 1 {
			r.notifier.Error(actor, "Usage: `import <locator>`")
			return
		}
		r.Import(actor, args[0])

	case "list":
		r.List(actor)

	case "spawn":
		if len(args) != 1 {
			r.notifier.Error(actor, "Usage: `spawn <name>`")
			return
		}
		r.Spawn(actor, args[0])

	case "message":
		if len(args) < 2 {
			r.notifier.Error(actor, "Usage: `message <name> <text>`")
			return
		}
		r.Message(actor, args[0], strings.Join(args[1:], " "))

	case "remove":
		if len(args) != 1 {
			r.notifier.Error(actor, "Usage: `remove <name>`")
			return
		}
		r.Remove(actor, args[0])

	default:
		r.notifier.Error(actor, "Unknown command. "+usage)
	}
}
