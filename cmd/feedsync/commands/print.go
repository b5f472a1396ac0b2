package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ncobase/feedsync/social"
	"github.com/ncobase/feedsync/structs"
)

const timeLayout = "2006-01-02 15:04"

func printPost(w io.Writer, n int, p *structs.Post, viewer string) {
	marks := ""
	if viewer != "" && p.HasMember(structs.FieldLikedBy, viewer) {
		marks += " [liked]"
	}
	if viewer != "" && p.HasMember(structs.FieldBookmarks, viewer) {
		marks += " [bookmarked]"
	}
	fmt.Fprintf(w, "%3d. %s  %s  %s%s\n", n, p.ID, p.Name, p.CreatedAt.Local().Format(timeLayout), marks)
	fmt.Fprintf(w, "     %s\n", p.Content)
	if p.ImageURL != "" {
		fmt.Fprintf(w, "     image: %s\n", p.ImageURL)
	}
	fmt.Fprintf(w, "     %d likes, %d comments\n", len(p.LikedBy), len(p.Comments))
	for _, c := range p.Comments {
		fmt.Fprintf(w, "       - %s: %s\n", c.Name, c.Content)
	}
}

func printUser(w io.Writer, u *structs.User) {
	fmt.Fprintf(w, "%s (@%s)\n", u.Name, u.Username)
	fmt.Fprintf(w, "  uid:       %s\n", u.UID)
	if u.Email != "" {
		fmt.Fprintf(w, "  email:     %s\n", u.Email)
	}
	fmt.Fprintf(w, "  followers: %d\n", len(u.Followers))
	fmt.Fprintf(w, "  following: %d\n", len(u.Following))
}

func printCard(w io.Writer, c *social.UserCard) {
	printUser(w, c.User)
	switch {
	case c.Self:
	case c.Followed:
		fmt.Fprintln(w, "  you follow this user")
	default:
		fmt.Fprintln(w, "  you do not follow this user")
	}
}

func printNotifications(w io.Writer, notes []structs.Notification) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notifications")
		return
	}
	for _, n := range notes {
		author := n.Author.Name
		if n.Author.Username != "" {
			author += " (@" + n.Author.Username + ")"
		}
		fmt.Fprintf(w, "%s  %s: %s\n", n.CreatedAt.Local().Format(timeLayout), author, oneLine(n.Content))
	}
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 80 {
		return s[:77] + "..."
	}
	return s
}

func ago(t time.Time) string {
	d := time.Since(t).Round(time.Minute)
	if d < time.Minute {
		return "just now"
	}
	return d.String() + " ago"
}
