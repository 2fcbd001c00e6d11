package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mediashare/internal/common"
)

// Like toggles the viewer's like on an item and prints the reconciled state.
// A toggle already in flight for the same item is dropped.
func (a *App) Like(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		a.report(ctx, "like", err)
		return err
	}

	lc, fresh := a.likeController(id)
	if fresh {
		// the toggle direction depends on the viewer's current like
		lc.Load(ctx).Log(ctx, a.logger)
	}

	sf := lc.Toggle(ctx)
	if !sf.OK() {
		sf.Log(ctx, a.logger)
		if errors.Is(sf.Cause(), common.ErrNotLoggedIn) || errors.Is(sf.Cause(), common.ErrBusy) {
			a.report(ctx, "like", sf.Cause())
			return sf.Cause()
		}
	}

	st := lc.State()
	verb := "Unliked"
	if st.Liked() {
		verb = "Liked"
	}
	fmt.Fprintf(a.out, "%s, %d like(s)\n", verb, st.Count)
	return nil
}

// Comment posts a comment. The text is taken from the remaining arguments or
// prompted for.
func (a *App) Comment(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		a.report(ctx, "comment", err)
		return err
	}

	text := strings.Join(args[1:], " ")
	if text == "" {
		text, err = getSimpleText(a.reader, "Comment", a.out)
		if err != nil {
			return err
		}
	}

	if err := a.comments.Post(ctx, id, text); err != nil {
		a.report(ctx, "comment", err)
		return err
	}
	fmt.Fprintln(a.out, "Comment added")
	return nil
}
