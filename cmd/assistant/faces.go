package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "Inspect the face registry",
}

var facesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Build the registry from the reference directory and list identities",
	RunE:  runFacesList,
}

func init() {
	rootCmd.AddCommand(facesCmd)
	facesCmd.AddCommand(facesListCmd)
}

func runFacesList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log)

	faces, err := buildFaceStack(cfg, logger)
	if err != nil {
		return err
	}
	defer faces.Close()

	files, err := faces.loader.Files()
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Encoding reference faces"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)
	faces.loader.Progress = func(string) {
		bar.Add(1)
	}

	reg, err := faces.loader.Load(cmd.Context())
	bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d of %d reference images registered from %s\n\n", reg.Len(), len(files), faces.loader.Dir())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIM")
	for _, entry := range reg.Entries() {
		fmt.Fprintf(w, "%s\t%d\n", entry.Name, entry.Embedding.Dim())
	}
	return w.Flush()
}
