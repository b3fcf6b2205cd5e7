package commands

import (
	"flag"
	"fmt"

	"github.com/brads3290/ccviewer/internal/userconfig"
)

// ConfigCmd reads and writes user preferences.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() string {
	return "config"
}

func (c *ConfigCmd) Description() string {
	return "Show or change viewer preferences"
}

func (c *ConfigCmd) Setup(fs *flag.FlagSet) {}

func (c *ConfigCmd) Run(ctx *Context, args []string) error {
	out := NewOutputWriter(ctx.Output, ctx.Config.JSONOutput)

	switch len(args) {
	case 0:
		cfg, err := ctx.UserConfig.Load()
		if err != nil {
			return err
		}
		if ctx.Config.JSONOutput {
			return out.WriteJSON(cfg)
		}
		out.PrintLine("# %s", ctx.UserConfig.Path())
		for _, key := range userconfig.Keys() {
			value, _ := cfg.Get(key)
			out.PrintKeyValue(key, value)
		}
		return nil

	case 1:
		cfg, err := ctx.UserConfig.Load()
		if err != nil {
			return err
		}
		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		if ctx.Config.JSONOutput {
			return out.WriteJSON(map[string]string{args[0]: value})
		}
		out.PrintLine("%s", value)
		return nil

	case 2:
		cfg, err := ctx.UserConfig.Update(func(prefs *userconfig.Config) error {
			return prefs.Set(args[0], args[1])
		})
		if err != nil {
			return err
		}
		if ctx.Config.JSONOutput {
			return out.WriteJSON(cfg)
		}
		value, _ := cfg.Get(args[0])
		out.PrintLine("%s = %s", args[0], value)
		return nil

	default:
		return fmt.Errorf("too many arguments\nUsage: ccviewer config [key] [value]")
	}
}
