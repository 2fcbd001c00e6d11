// Package flagx lets several config layers share os.Args: each layer keeps
// only the flags it owns and parses them with its own FlagSet.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args made of allowedFlags and their values.
//
// Both "-c conf.json" and "-c=conf.json" forms are recognised. A token that
// starts with "-" is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFileFlags extracts the JSON config path (-c / -config) and the dotenv
// path (-e / -env) from args. Missing flags yield empty strings.
func ConfigFileFlags(args []string) (jsonPath, envPath string) {
	filtered := FilterArgs(args, []string{"-c", "-config", "-e", "-env"})

	fs := flag.NewFlagSet("files", flag.ContinueOnError)
	fs.StringVar(&jsonPath, "config", "", "path to JSON config file")
	fs.StringVar(&jsonPath, "c", "", "path to JSON config file (short)")
	fs.StringVar(&envPath, "env", "", "path to .env file")
	fs.StringVar(&envPath, "e", "", "path to .env file (short)")
	_ = fs.Parse(filtered)

	return jsonPath, envPath
}
