package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/client/query"
	"github.com/dmitrijs2005/mediashare/internal/client/services"
	"github.com/dmitrijs2005/mediashare/internal/common"
)

// getMultiline and confirm are indirections used to facilitate testing.
var getMultiline = GetMultiline
var confirm = Confirm

var errUnknownMedia = errors.New("no such media item")

// feedAttempts bounds how often a foreground fetch retries after being
// superseded by the background refresher.
const feedAttempts = 3

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// currentFeed returns the feed kept fresh by the background watcher. When the
// published result predates the latest mutation it fetches one itself.
func (a *App) currentFeed(ctx context.Context) ([]models.MediaItemWithOwner, error) {
	if snap, ok := a.feed.Result(); ok && a.feed.Err() == nil && snap.version == a.bus.Version() {
		return snap.items, nil
	}
	for range feedAttempts {
		snap, err := a.feed.Refresh(ctx)
		if !errors.Is(err, query.ErrSuperseded) {
			return snap.items, err
		}
	}
	snap, _ := a.feed.Result()
	return snap.items, a.feed.Err()
}

func (a *App) findMedia(ctx context.Context, id int64) (*models.MediaItemWithOwner, error) {
	items, err := a.currentFeed(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].MediaID == id {
			return &items[i], nil
		}
	}
	return nil, errUnknownMedia
}

// fileURL is where the media service serves an uploaded file.
func (a *App) fileURL(filename string) string {
	return strings.TrimSuffix(a.config.MediaAPI, "/") + "/uploads/" + url.PathEscape(filename)
}

func printMediaList(w io.Writer, items []models.MediaItemWithOwner) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No media")
		return
	}
	for _, m := range items {
		fmt.Fprintf(w, "[%d] %s by %s (%s, %s)\n", m.MediaID, m.Title, m.Username, m.MediaType, m.CreatedAt.Format("2006-01-02"))
	}
}

// Feed lists every media item with its owner's username.
func (a *App) Feed(ctx context.Context) error {
	items, err := a.currentFeed(ctx)
	if err != nil {
		a.report(ctx, "feed", err)
		return err
	}
	printMediaList(a.out, items)
	return nil
}

// Mine lists the logged-in user's own media.
func (a *App) Mine(ctx context.Context) error {
	u := a.session.CurrentUser()
	if u == nil {
		a.report(ctx, "mine", common.ErrNotLoggedIn)
		return common.ErrNotLoggedIn
	}
	items, err := a.currentFeed(ctx)
	if err != nil {
		a.report(ctx, "mine", err)
		return err
	}
	printMediaList(a.out, services.FilterOwned(items, u.UserID))
	return nil
}

// Show prints one item with its like state and comments. Comments and likes
// are best effort: a failure shows them as empty.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		a.report(ctx, "show", err)
		return err
	}
	m, err := a.findMedia(ctx, id)
	if err != nil {
		a.report(ctx, "show", err)
		return err
	}

	fmt.Fprintf(a.out, "[%d] %s\n", m.MediaID, m.Title)
	fmt.Fprintf(a.out, "  by %s on %s\n", m.Username, m.CreatedAt.Format("2006-01-02 15:04"))
	if m.Description != nil {
		fmt.Fprintf(a.out, "  %s\n", *m.Description)
	}
	fmt.Fprintf(a.out, "  %s, %d bytes: %s\n", m.MediaType, m.Filesize, a.fileURL(m.Filename))

	lc, _ := a.likeController(id)
	if sf := lc.Load(ctx); !sf.OK() {
		sf.Log(ctx, a.logger)
	}
	st := lc.State()
	liked := ""
	if st.Liked() {
		liked = " (you like this)"
	}
	fmt.Fprintf(a.out, "  likes: %d%s\n", st.Count, liked)

	comments, sf := a.comments.ListOrEmpty(ctx, id)
	sf.Log(ctx, a.logger)
	fmt.Fprintf(a.out, "  comments: %d\n", len(comments))
	for _, c := range comments {
		fmt.Fprintf(a.out, "    %s: %s\n", c.Username, c.CommentText)
	}
	return nil
}

// Upload sends a local file and creates a media item for it.
func (a *App) Upload(ctx context.Context, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		p, err := getSimpleText(a.reader, "File path", a.out)
		if err != nil {
			return err
		}
		path = p
	}

	in, err := a.readMediaInput(models.MediaInput{})
	if err != nil {
		return err
	}
	if err := services.ValidateMediaInput(in); err != nil {
		a.report(ctx, "upload", err)
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		a.report(ctx, "upload", err)
		return err
	}
	defer f.Close()

	file, err := uploadFile(f)
	if err != nil {
		a.report(ctx, "upload", err)
		return err
	}

	item, err := a.media.Upload(ctx, file, in)
	if err != nil {
		a.report(ctx, "upload", err)
		return err
	}
	fmt.Fprintf(a.out, "Uploaded [%d] %s\n", item.MediaID, item.Title)
	return nil
}

// uploadFile describes f for the uploader. The content type comes from the
// extension, falling back to sniffing the first bytes.
func uploadFile(f *os.File) (models.UploadFile, error) {
	fi, err := f.Stat()
	if err != nil {
		return models.UploadFile{}, err
	}
	if fi.IsDir() {
		return models.UploadFile{}, fmt.Errorf("%s is a directory", f.Name())
	}

	name := filepath.Base(f.Name())
	br := bufio.NewReader(f)

	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		head, _ := br.Peek(512)
		ct = http.DetectContentType(head)
	}

	return models.UploadFile{
		Name:        name,
		ContentType: ct,
		Size:        fi.Size(),
		Body:        br,
	}, nil
}

// readMediaInput prompts for a title and description. Empty answers keep
// the values of cur.
func (a *App) readMediaInput(cur models.MediaInput) (models.MediaInput, error) {
	prompt := "Title"
	if cur.Title != "" {
		prompt = fmt.Sprintf("Title (empty keeps %q)", cur.Title)
	}
	title, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return cur, err
	}
	if title != "" {
		cur.Title = title
	}

	desc, err := getMultiline(a.reader, "Description (optional)", a.out)
	if err != nil {
		return cur, err
	}
	if desc != "" {
		cur.Description = desc
	}
	return cur, nil
}

// Edit changes the title and description of an own item.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		a.report(ctx, "edit", err)
		return err
	}
	m, err := a.findMedia(ctx, id)
	if err != nil {
		a.report(ctx, "edit", err)
		return err
	}

	cur := models.MediaInput{Title: m.Title}
	if m.Description != nil {
		cur.Description = *m.Description
	}
	in, err := a.readMediaInput(cur)
	if err != nil {
		return err
	}
	if in == cur {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	if err := a.media.Update(ctx, id, in); err != nil {
		a.report(ctx, "edit", err)
		return err
	}
	fmt.Fprintln(a.out, "Media updated")
	return nil
}

// Delete removes an own item after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		a.report(ctx, "delete", err)
		return err
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete media %d?", id), a.out)
	if err != nil || !ok {
		return err
	}

	if err := a.media.Delete(ctx, id); err != nil {
		a.report(ctx, "delete", err)
		return err
	}
	fmt.Fprintln(a.out, "Media deleted")
	return nil
}
