package main

import (
	"fmt"

	"github.com/goodnatureofminers/stateinsight7000/internal/schema"
)

type schemaValidateCommand struct {
	app *app

	Args struct {
		Schema string `positional-arg-name:"schema" description:"schema file (toml or yaml)"`
	} `positional-args:"yes" required:"yes"`
}

func (c *schemaValidateCommand) Execute(_ []string) error {
	s, err := schema.Load(c.Args.Schema)
	if err != nil {
		return err
	}
	issues := schema.Validate(s)
	for _, issue := range issues {
		fmt.Fprintln(c.app.out, issue.String())
	}
	if schema.HasErrors(issues) {
		return fmt.Errorf("schema %s has errors", c.Args.Schema)
	}
	fmt.Fprintf(c.app.out, "%s: contract %q is valid (%d warnings)\n", c.Args.Schema, s.Contract.Name, len(issues))
	return nil
}
