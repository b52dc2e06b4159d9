package config

import (
	"flag"
	"io"
	"strings"
)

// filterArgs keeps only the allowed flags and their values. Both "-f value"
// and "-f=value" forms are recognized. boolFlags are kept too but never take
// the following argument as their value.
func filterArgs(args []string, allowed []string, boolFlags ...string) []string {
	known := make(map[string]struct{}, len(allowed)+len(boolFlags))
	for _, f := range allowed {
		known[f] = struct{}{}
	}
	isBool := make(map[string]struct{}, len(boolFlags))
	for _, f := range boolFlags {
		known[f] = struct{}{}
		isBool[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			if _, ok := known[strings.SplitN(arg, "=", 2)[0]]; ok {
				out = append(out, arg)
			}
			continue
		}

		if _, ok := known[arg]; ok {
			out = append(out, arg)
			if _, ok := isBool[arg]; ok {
				continue
			}
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				out = append(out, args[i+1])
				i++
			}
		}
	}
	return out
}

// configPath extracts the JSON config path given with -c or -config.
func configPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(filterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
