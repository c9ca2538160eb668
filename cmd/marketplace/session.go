package main

import (
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/avatar"
	"marketplace/internal/notify"
	"marketplace/internal/pkg/phone"
)

func loginCommand(a *app, args []string) error {
	fs := newFlags("login")
	if err := fs.Parse(args); err != nil {
		return err
	}
	email := fs.Arg(0)
	if email == "" {
		var err error
		if email, err = a.prompt("Email"); err != nil {
			return err
		}
	}
	password, err := a.prompt("Password")
	if err != nil {
		return err
	}

	res, err := a.api.Login(a.ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	if err := a.session.SetToken(res.Token); err != nil {
		return err
	}
	a.session.SetUser(&res.User)
	notify.Success(a.notify, fmt.Sprintf("Welcome back, %s", res.User.Name))
	return nil
}

func logoutCommand(a *app, args []string) error {
	if err := a.session.Clear(); err != nil {
		return err
	}
	notify.Info(a.notify, "Logged out")
	return nil
}

func whoamiCommand(a *app, args []string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	// always show the server's view, not the cached user
	u, err := a.api.Me(a.ctx)
	if err != nil {
		return err
	}
	if u == nil {
		return errors.New("empty profile")
	}

	av := avatar.Render(u.Name, string(u.Avatar), a.api.Origin())
	fmt.Fprintf(a.out, "%s <%s>\n", u.Name, u.Email)
	fmt.Fprintf(a.out, "  role:    %s\n", u.Role)
	if u.Phone != "" {
		fmt.Fprintf(a.out, "  phone:   %s (verified: %t)\n", phone.Format(u.Phone), u.PhoneVerified)
	}
	if av.HasImage() {
		fmt.Fprintf(a.out, "  avatar:  %s\n", av.URL)
	} else {
		fmt.Fprintf(a.out, "  avatar:  [%s] %s\n", av.Initials, av.Color)
	}
	if u.Shop != nil {
		fmt.Fprintf(a.out, "  shop:    #%d %s\n", u.Shop.ID, u.Shop.Name())
	}
	if exp, ok := a.session.ExpiresAt(); ok {
		fmt.Fprintf(a.out, "  session: expires %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
