package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"blog_admin/internal/domain"
	"blog_admin/internal/listing"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

func renderPager(w io.Writer, v listing.View[domain.Post]) {
	writePager(w, v.Page, v.TotalPages, v.FilteredCount, v.Total, v.Pager())
}

func writePager(w io.Writer, page, totalPages, filtered, total int, items []listing.PageItem) {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		switch {
		case it.Gap:
			parts = append(parts, "…")
		case it.Number == page:
			parts = append(parts, fmt.Sprintf("[%d]", it.Number))
		default:
			parts = append(parts, fmt.Sprint(it.Number))
		}
	}
	fmt.Fprintf(w, "page %d/%d  %s  (%d of %d records)\n", page, totalPages, strings.Join(parts, " "), filtered, total)
}

func renderPosts(w io.Writer, v listing.View[domain.Post]) {
	if v.Err != nil {
		fmt.Fprintln(w, "load failed:", describe(v.Err))
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tSTATUS\tDATE\tAUTHOR")
	for _, p := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, truncate(p.Title, 40), p.Category, p.EffectiveStatus(), p.Date, p.AuthorEmail)
	}
	tw.Flush()
	renderPager(w, v)
}

func renderCategories(w io.Writer, v listing.View[domain.Category]) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
	}
	tw.Flush()
	writePager(w, v.Page, v.TotalPages, v.FilteredCount, v.Total, v.Pager())
}

func renderMembers(w io.Writer, v listing.View[domain.Member]) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tHANDLE\tEMAIL\tSTATUS")
	for _, m := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Handle, m.Email, m.Status)
	}
	tw.Flush()
	writePager(w, v.Page, v.TotalPages, v.FilteredCount, v.Total, v.Pager())
}

func renderThread(w io.Writer, t threadView) {
	p := t.Post
	fmt.Fprintf(w, "%s\n%s\n", p.Title, strings.Repeat("─", len([]rune(p.Title))))
	author := p.AuthorEmail
	if t.OwnerName != "" {
		author = t.OwnerName
	}
	fmt.Fprintf(w, "%s · %s · %s\n\n", p.Date, p.Category, author)
	if p.Desc != "" {
		fmt.Fprintf(w, "%s\n\n", p.Desc)
	}
	fmt.Fprintf(w, "%s\n\n", p.Body())

	v := t.Comments
	fmt.Fprintf(w, "Comments (%d)\n", v.Total)
	for _, c := range v.Items {
		mark := ""
		if t.CanDelete[c.ID] {
			mark = " *"
		}
		fmt.Fprintf(w, "  [%s] %s: %s%s\n", c.ID, c.UserEmail, c.Text, mark)
	}
	if v.TotalPages > 1 {
		writePager(w, v.Page, v.TotalPages, v.FilteredCount, v.Total, v.Pager())
	}
}

// threadView is the printable part of a discussion thread.
type threadView struct {
	Post      domain.Post
	OwnerName string
	Comments  listing.View[domain.Comment]
	CanDelete map[domain.ID]bool
}
