package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) Main(ctx context.Context) {
	fmt.Fprintln(a.out, "TripSync CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.statusLine, scanner)
}
