package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/services"
)

var (
	createSubtype  string
	createTopic    string
	createTags     []string
	createAliases  []string
	createBody     string
	createSections []string // "Name=value" pairs
	createSuppress bool
)

var createCmd = &cobra.Command{
	Use:   "create <kind> <title>",
	Short: "create a new node (note, reference, log, task)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("create", err)
		}
		defer a.Close()

		sections := map[string]string{}
		for _, kv := range createSections {
			name, value, ok := strings.Cut(kv, "=")
			if ok {
				sections[name] = value
			}
		}

		in := services.CreateInput{
			Kind:     model.Kind(args[0]),
			Subtype:  model.Subtype(createSubtype),
			Title:    args[1],
			Topic:    createTopic,
			Tags:     createTags,
			Aliases:  createAliases,
			Session:  flagSession,
			Sections: sections,
			Body:     createBody,
			Suppress: createSuppress,
		}
		res, err := a.create.Create(cmd.Context(), in)
		if err != nil {
			return emitErr("create", err)
		}
		return emit(res)
	},
}

func init() {
	createCmd.Flags().StringVar(&createSubtype, "subtype", "", "content subtype (e.g. decision)")
	createCmd.Flags().StringVar(&createTopic, "topic", "", "topic directory")
	createCmd.Flags().StringSliceVar(&createTags, "tag", nil, "tags (repeatable)")
	createCmd.Flags().StringSliceVar(&createAliases, "alias", nil, "aliases (repeatable)")
	createCmd.Flags().StringVar(&createBody, "body", "", "plain body text")
	createCmd.Flags().StringArrayVar(&createSections, "section", nil, "named section as Name=value (repeatable)")
	createCmd.Flags().BoolVar(&createSuppress, "no-reweave", false, "suppress automatic reweave on create")
	rootCmd.AddCommand(createCmd)
}
