package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quiver/pkg/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the field document",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := schema.FieldJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
