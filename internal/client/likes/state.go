// Package likes tracks the like count and the viewer's own like for one
// media item. State changes only through Reduce; the Controller feeds it
// actions built from server responses.
package likes

import "github.com/dmitrijs2005/mediashare/internal/client/models"

// State is per item and never shared between items.
type State struct {
	Count      int
	ViewerLike *models.LikeRecord
}

// Liked reports whether the viewer currently holds a like.
func (s State) Liked() bool { return s.ViewerLike != nil }

// Action is one of SetLikeCount, SetViewerLike or AdjustCount.
type Action interface {
	isAction()
}

// SetLikeCount replaces Count and leaves ViewerLike untouched.
type SetLikeCount struct{ Count int }

// SetViewerLike replaces ViewerLike and leaves Count untouched.
type SetViewerLike struct{ Like *models.LikeRecord }

// AdjustCount shifts Count by Delta. Only the optimistic toggle uses it.
type AdjustCount struct{ Delta int }

func (SetLikeCount) isAction()  {}
func (SetViewerLike) isAction() {}
func (AdjustCount) isAction()   {}

// Reduce is the pure transition function. Count never goes below zero.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetLikeCount:
		s.Count = max(a.Count, 0)
	case SetViewerLike:
		if a.Like != nil {
			like := *a.Like
			s.ViewerLike = &like
		} else {
			s.ViewerLike = nil
		}
	case AdjustCount:
		s.Count = max(s.Count+a.Delta, 0)
	}
	return s
}
