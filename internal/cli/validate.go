package cli

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"journeyboard/internal/boardconfig"
	"journeyboard/internal/engine"
)

func runValidate(args []string, stdout, stderr io.Writer) error {
	cfg, _, err := parseConfig("validate", args, stderr, func(fs *flag.FlagSet, c *Config) {
		bindBoard(fs, c)
	})
	if err != nil {
		return err
	}
	board, err := boardconfig.Load(cfg.BoardPath)
	if err != nil {
		return err
	}
	printBoard(stdout, board)
	return nil
}

func printBoard(w io.Writer, b *engine.PlayerBoard) {
	fmt.Fprintf(w, "board %s is valid\n", b.BoardID)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "row\tcapacity\tslots\tstate")
	for _, r := range b.WorkerRows {
		state := "open"
		if r.Locked() {
			state = "locked"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", r.RowIndex, r.Capacity(), len(r.SealSlots), state)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "objectives: %d silver, %d golden, %d reserve\n",
		len(b.ObjectivesOfTier(engine.TierSilver)), len(b.ObjectivesOfTier(engine.TierGolden)), len(b.ReserveSlots))
	for _, pb := range b.PairBonuses {
		fmt.Fprintf(w, "pair bonus %s: %s + %s -> %s\n", pb.ID, pb.Condition[0], pb.Condition[1], pb.RewardAction)
	}
	fmt.Fprintf(w, "tents: %d, stamps: %d, specimens: %d\n", len(b.TentSlots), len(b.StampSlots), len(b.SpecimenGrid))
}
