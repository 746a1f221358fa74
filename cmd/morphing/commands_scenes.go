package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YishiMichael/morphing-sub001/codec"
	"github.com/YishiMichael/morphing-sub001/recordstore"
	"github.com/YishiMichael/morphing-sub001/scene"
)

func buildScenesCmd(root *rootOptions) *cobra.Command {
	var remove string
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List built-in scenes and stored records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenes(cmd, root, remove)
		},
	}
	cmd.Flags().StringVar(&remove, "delete", "", "Delete the stored record of this scene")
	return cmd
}

func runScenes(cmd *cobra.Command, root *rootOptions, remove string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Built-in scenes:")
	for _, s := range scene.Demo() {
		fmt.Fprintf(out, "  %s\n", s.Name)
	}
	if root.dbPath == "" {
		if remove != "" {
			return fmt.Errorf("--delete needs --db")
		}
		return nil
	}

	store, err := recordstore.Open(root.dbPath, codec.FormatJSON)
	if err != nil {
		return err
	}
	defer store.Close()

	if remove != "" {
		if err := store.Delete(cmd.Context(), remove); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %s\n", remove)
	}

	sums, err := store.Scenes(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nStored records (%s):\n", root.dbPath)
	if len(sums) == 0 {
		fmt.Fprintln(out, "  none")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  SCENE\tINTERVAL\tENTRIES\tUPDATED\tID")
	for _, s := range sums {
		fmt.Fprintf(tw, "  %s\t[%.2f, %.2f)\t%d\t%s\t%s\n",
			s.Scene, s.Start, s.End, s.Entries, s.UpdatedAt.Format("2006-01-02 15:04:05"), s.ID)
	}
	return tw.Flush()
}
