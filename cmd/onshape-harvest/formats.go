package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/onshape-harvest/internal/harvest"
	"github.com/pdiddy/onshape-harvest/internal/onshape"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [document URL]",
	Short: "List the translation formats a drawing supports",
	Long: `Formats queries the translation formats available for one drawing.
The argument must be a document URL that includes the element id:

  https://cad.onshape.com/documents/<did>/w/<wid>/e/<eid>`,
	Args: cobra.ExactArgs(1),
	RunE: runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, args []string) error {
	documentID, workspaceID, elementID, err := harvest.ParseDocumentURL(args[0])
	if err != nil {
		return err
	}
	if elementID == "" {
		return fmt.Errorf("document URL must include the drawing element id (/e/<eid>)")
	}

	client := onshape.New(clientConfig(cmd))
	formats, err := client.ListDrawingTranslationFormats(cmd.Context(), documentID, workspaceID, elementID)
	if err != nil {
		return err
	}

	for _, f := range formats {
		note := ""
		if f.CouldBeBlockedByUpdate {
			note = " (may be blocked by a pending update)"
		}
		fmt.Printf("%-12s %s%s\n", f.Name, f.TranslatorName, note)
	}
	return nil
}
