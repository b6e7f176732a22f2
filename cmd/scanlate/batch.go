package main

import (
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch <folder>",
	Short: "Process every chapter of a comic folder",
	Long: `Archives directly inside <folder> are processed one by one. Without
archives every sub-folder is a chapter, and without sub-folders the images in
<folder> itself form one chapter.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return a.runBatch(cmd.Context(), args[0])
	},
}
