package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cognicore/semtext/pkg/semtext/nltext"
	"github.com/cognicore/semtext/pkg/semtext/sstring"
)

var reviewed bool

var convertCmd = &cobra.Command{
	Use:   "convert <nltext.json>",
	Short: "Convert annotated text to semantic text",
	Long: `Reads an annotated text as JSON ("-" for stdin) and prints the
semantic text: one term per token or winning group, without overlaps.

Example:
  semtext convert doc.json
  semtext convert doc.json --reviewed`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var encodeCmd = &cobra.Command{
	Use:   "encode <nltext.json>",
	Short: "Encode annotated text as a semantic string",
	Args:  cobra.ExactArgs(1),
	RunE:  runEncode,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <sstring.json>",
	Short: "Decode a semantic string back to semantic text",
	Long: `Decodes a semantic string. The heaviest meaning of each term is
selected when it clearly beats the runner-up.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)

	convertCmd.Flags().BoolVar(&reviewed, "reviewed", false, "mark selected meanings as reviewed")
	decodeCmd.Flags().BoolVar(&reviewed, "reviewed", false, "mark selected meanings as reviewed")
}

func runConvert(cmd *cobra.Command, args []string) error {
	comp, logger, err := components(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	text, err := readNLText(args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), comp.NLText.Convert(text, comp.Reviewed))
}

func runEncode(cmd *cobra.Command, args []string) error {
	comp, logger, err := components(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	text, err := readNLText(args[0])
	if err != nil {
		return err
	}
	ss, err := comp.SemanticString.SemanticString(comp.NLText.Convert(text, comp.Reviewed))
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), ss)
}

func runDecode(cmd *cobra.Command, args []string) error {
	comp, logger, err := components(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, err := readInput(args[0])
	if err != nil {
		return err
	}
	var ss sstring.SemanticString
	if err := json.Unmarshal(data, &ss); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	return writeJSON(cmd.OutOrStdout(), comp.SemanticString.SemText(&ss, comp.Reviewed))
}

func readNLText(path string) (*nltext.Text, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var text nltext.Text
	if err := json.Unmarshal(data, &text); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
