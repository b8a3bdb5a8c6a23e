package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"journeyboard/internal/storage"
)

func runShow(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var id string
	cfg, _, err := parseConfig("show", args, stderr, func(fs *flag.FlagSet, c *Config) {
		bindStore(fs, c)
		fs.StringVar(&id, "id", "", "snapshot id (empty lists all snapshots)")
	})
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = storage.CloseIfSupported(store) }()

	if id == "" {
		list, err := store.ListSnapshots(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(stdout, "no snapshots")
			return nil
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "id\tlabel\tgame\tphase\tcreated")
		for _, r := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Label, r.Snapshot.GameID, r.Snapshot.Phase, r.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	}

	rec, ok, err := store.GetSnapshot(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("snapshot %s not found", id)
	}
	snap := rec.Snapshot
	fmt.Fprintf(stdout, "snapshot %s (%s)\ngame %s on %s, phase %s\n", rec.ID, rec.Label, snap.GameID, snap.BoardID, snap.Phase)

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "player\tcoins\tvp\tseals\tclaims\ttotal")
	claims := make(map[string]int)
	for _, holder := range snap.State.Claims {
		claims[holder]++
	}
	totals := make(map[string]int)
	for _, e := range snap.State.Scores {
		totals[e.PlayerID] = e.Total
	}
	for _, p := range snap.State.Players {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", p.ID, p.Coins, p.VP, len(p.Seals), claims[p.ID], totals[p.ID])
	}
	return tw.Flush()
}
