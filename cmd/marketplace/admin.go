package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"marketplace/internal/account"
	"marketplace/internal/moderation"
	"marketplace/internal/pkg/phone"
)

func adminCommand(a *app, args []string) error {
	if len(args) == 0 {
		newFlags("admin").Usage()
		return errors.New("admin subcommand required")
	}
	u, err := a.requireLogin()
	if err != nil {
		return err
	}
	if !u.IsAdmin() {
		return errors.New("admin access required")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "users":
		return adminUsers(a, rest)
	case "sellers":
		return adminSellers(a, rest)
	case "approve", "reject", "delete-seller", "badge":
		return adminSellerAction(a, sub, rest)
	case "delete-user":
		return adminDeleteUser(a, rest)
	default:
		return fmt.Errorf("unknown admin subcommand %q", sub)
	}
}

func queryFlags(name string, args []string, filter string) (moderation.Query, []string, error) {
	fs := newFlags("admin")
	fs.Init("admin "+name, fs.ErrorHandling())
	var q moderation.Query
	fs.StringVar(&q.Search, "search", "", "case-insensitive search")
	sort := fs.String("sort", string(moderation.SortNewest), "newest, oldest, name, email or role")
	f := fs.String(filter, moderation.FilterAll, "filter by "+filter)
	if err := fs.Parse(args); err != nil {
		return q, nil, err
	}
	q.Sort = moderation.SortMode(*sort)
	if filter == "role" {
		q.Role = *f
	} else {
		q.Status = *f
	}
	return q, fs.Args(), nil
}

func adminUsers(a *app, args []string) error {
	q, _, err := queryFlags("users", args, "role")
	if err != nil {
		return err
	}
	list := moderation.NewUserList(a.api, a.notify)
	if err := list.Load(a.ctx); err != nil {
		return err
	}

	users := list.View(q)
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tROLE\tSHOP\tJOINED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Name, u.Email, phone.Format(u.Phone), u.Role, u.Shop.Name(), u.CreatedAt.Format("2006-01-02"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d of %d users\n", len(users), len(list.All()))
	return nil
}

func adminSellers(a *app, args []string) error {
	q, _, err := queryFlags("sellers", args, "status")
	if err != nil {
		return err
	}
	list := moderation.NewSellerList(a.api, a.notify)
	if err := list.Load(a.ctx); err != nil {
		return err
	}

	shops := list.View(q)
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSHOP\tOWNER\tEMAIL\tPHONE\tSTATUS\tVERIFIED\tCREATED")
	for _, s := range shops {
		owner, email := "", ""
		if s.Owner != nil {
			owner, email = s.Owner.Name, s.Owner.Email
		}
		status := string(s.Status)
		if s.RejectReason != "" {
			status += " (" + s.RejectReason + ")"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			s.ID, s.Name, owner, email, phone.Format(s.Phone), status, s.Verified, s.CreatedAt.Format("2006-01-02"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	c := list.Counts()
	fmt.Fprintf(a.out, "%d shown; pending %d, approved %d, rejected %d\n",
		len(shops), c["pending"], c["approved"], c["rejected"])
	return nil
}

func adminSellerAction(a *app, action string, args []string) error {
	fs := newFlags("admin")
	fs.Init("admin "+action, fs.ErrorHandling())
	reason := fs.String("reason", "", "rejection reason")
	off := fs.Bool("off", false, "remove the verified badge")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return errors.New("shop id required")
	}

	list := moderation.NewSellerList(a.api, a.notify)
	switch action {
	case "approve":
		return list.Approve(a.ctx, id)
	case "reject":
		return list.Reject(a.ctx, id, *reason)
	case "delete-seller":
		if err := a.confirmDelete(); err != nil {
			return err
		}
		return list.Delete(a.ctx, id)
	default:
		shop, err := a.api.SetShopBadge(a.ctx, id, !*off)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s verified: %t\n", shop.Name, shop.Verified)
		return nil
	}
}

func adminDeleteUser(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("user id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errors.New("user id required")
	}
	if err := a.confirmDelete(); err != nil {
		return err
	}
	return moderation.NewUserList(a.api, a.notify).Delete(a.ctx, id)
}

func (a *app) confirmDelete() error {
	in, err := a.prompt(fmt.Sprintf("Type %s to confirm", account.ConfirmWord))
	if err != nil {
		return err
	}
	return account.Confirm(in)
}
