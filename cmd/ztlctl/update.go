package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ThatDevStudio/ztlctl/internal/model"
	"github.com/ThatDevStudio/ztlctl/internal/services"
)

var (
	updateTitle  string
	updateBody   string
	updateTags   []string
	updateAlias  []string
	updateTopic  string
	updateStatus string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "apply a partial change to an existing node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("update", err)
		}
		defer a.Close()

		in := services.UpdateInput{ID: args[0], Session: flagSession}
		if cmd.Flags().Changed("title") {
			in.Title = &updateTitle
		}
		if cmd.Flags().Changed("body") {
			in.Body = &updateBody
		}
		if cmd.Flags().Changed("tag") {
			in.Tags = &updateTags
		}
		if cmd.Flags().Changed("alias") {
			in.Aliases = &updateAlias
		}
		if cmd.Flags().Changed("topic") {
			in.Topic = &updateTopic
		}
		if cmd.Flags().Changed("status") {
			in.Status = &updateStatus
		}

		res, err := a.update.Update(cmd.Context(), in)
		if err != nil {
			return emitErr("update", err)
		}
		return emit(res)
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "archive a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("archive", err)
		}
		defer a.Close()
		res, err := a.update.Archive(cmd.Context(), args[0], flagSession)
		if err != nil {
			return emitErr("archive", err)
		}
		return emit(res)
	},
}

var (
	supersedeSubtype  string
	supersedeTopic    string
	supersedeTags     []string
	supersedeAliases  []string
	supersedeBody     string
	supersedeSections []string
)

var supersedeCmd = &cobra.Command{
	Use:   "supersede <old-id> <new-title>",
	Short: "supersede a decision with a new one, closing the old",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Flags())
		if err != nil {
			return emitErr("supersede", err)
		}
		defer a.Close()

		sections := map[string]string{}
		for _, kv := range supersedeSections {
			name, value, ok := strings.Cut(kv, "=")
			if ok {
				sections[name] = value
			}
		}

		in := services.CreateInput{
			Kind:     model.KindNote,
			Subtype:  model.Subtype(supersedeSubtype),
			Title:    args[1],
			Topic:    supersedeTopic,
			Tags:     supersedeTags,
			Aliases:  supersedeAliases,
			Session:  flagSession,
			Sections: sections,
			Body:     supersedeBody,
		}
		res, err := a.update.Supersede(cmd.Context(), a.create, args[0], in)
		if err != nil {
			return emitErr("supersede", err)
		}
		return emit(res)
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateBody, "body", "", "new body text")
	updateCmd.Flags().StringSliceVar(&updateTags, "tag", nil, "replacement tag set (repeatable)")
	updateCmd.Flags().StringSliceVar(&updateAlias, "alias", nil, "replacement alias set (repeatable)")
	updateCmd.Flags().StringVar(&updateTopic, "topic", "", "new topic")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "new status")
	rootCmd.AddCommand(updateCmd)

	rootCmd.AddCommand(archiveCmd)

	supersedeCmd.Flags().StringVar(&supersedeSubtype, "subtype", "decision", "content subtype for the new node")
	supersedeCmd.Flags().StringVar(&supersedeTopic, "topic", "", "topic directory")
	supersedeCmd.Flags().StringSliceVar(&supersedeTags, "tag", nil, "tags (repeatable)")
	supersedeCmd.Flags().StringSliceVar(&supersedeAliases, "alias", nil, "aliases (repeatable)")
	supersedeCmd.Flags().StringVar(&supersedeBody, "body", "", "plain body text")
	supersedeCmd.Flags().StringArrayVar(&supersedeSections, "section", nil, "named section as Name=value (repeatable)")
	rootCmd.AddCommand(supersedeCmd)
}
