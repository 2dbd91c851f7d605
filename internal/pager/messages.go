package pager

import "ammonit/internal/paging"

// PageLoadedMsg carries a successful fetch for the view named ID.
type PageLoadedMsg[T any] struct {
	ID     string
	Page   int
	Seq    uint64
	Result paging.Result[T]
}

// PagerID lets hosts route the message without knowing T.
func (m PageLoadedMsg[T]) PagerID() string { return m.ID }

// PageFailedMsg carries a failed fetch for the view named ID.
type PageFailedMsg struct {
	ID   string
	Page int
	Seq  uint64
	Err  error
}

func (m PageFailedMsg) PagerID() string { return m.ID }
