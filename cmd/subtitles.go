package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/glefebvre/cinevo/internal/subtitle"
	"github.com/spf13/cobra"
)

var subtitlesCmd = &cobra.Command{
	Use:   "subtitles",
	Short: "Work with subtitle files",
}

var subtitlesNormalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Parse an SRT or WebVTT file and print it as WebVTT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		parser := subtitle.NewParser()
		cues := parser.Parse(string(content))
		fmt.Print(subtitle.Serialize(cues))

		stats := parser.GetStats()
		if stats.DroppedCues > 0 || stats.MalformedTimestamps > 0 {
			fmt.Fprintf(os.Stderr, "%d cues kept, %d dropped, %d malformed timestamps\n",
				stats.Cues, stats.DroppedCues, stats.MalformedTimestamps)
		}
		return nil
	},
}

var subtitlesLookupCmd = &cobra.Command{
	Use:   "lookup <file> <seconds>",
	Short: "Print the cue text shown at a playback time",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid playback time %q: %w", args[1], err)
		}

		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		hidden, _ := cmd.Flags().GetBool("hidden")
		track := subtitle.NewTrack("", string(content))
		if hidden {
			track.Toggle()
		}

		text := track.At(seconds)
		if text == "" {
			fmt.Fprintf(os.Stderr, "No cue at %s\n", subtitle.FormatTimestamp(seconds))
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	subtitlesLookupCmd.Flags().Bool("hidden", false, "treat the track as switched off (prints nothing)")
	subtitlesCmd.AddCommand(subtitlesNormalizeCmd, subtitlesLookupCmd)
	rootCmd.AddCommand(subtitlesCmd)
}
