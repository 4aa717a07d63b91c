package commands

import (
	"fmt"

	"github.com/vzt7/unbuild/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Root  string `arg:"" optional:"" default:"." help:"Project root directory"`
	Force bool   `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return RunInit(ConfigPath(i.Root, root.Config), i.Force)
}

func RunInit(configPath string, force bool) error {
	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	fmt.Println("initialized successfully")
	return nil
}
