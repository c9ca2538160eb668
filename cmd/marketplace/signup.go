package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"marketplace/internal/account"
	"marketplace/internal/signup"
)

func signupCommand(a *app, args []string) error {
	fs := newFlags("signup")
	seller := fs.Bool("seller", false, "create a seller account with a shop")
	avatarPath := fs.String("avatar", "", "profile picture (customers only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind := signup.Customer
	if *seller {
		kind = signup.Seller
	}
	form := signup.NewForm(kind, a.api, a.session, a.notify)

	var err error
	if form.Name, err = a.prompt("Full name"); err != nil {
		return err
	}
	if err := a.verify(form.Email, "Email"); err != nil {
		return err
	}

	if kind == signup.Seller {
		if err := a.verify(form.Phone, "WhatsApp number (06/07...)"); err != nil {
			return err
		}
		fields := []struct {
			label string
			dst   *string
		}{
			{"Shop name", &form.Shop.Name},
			{"Shop description", &form.Shop.Description},
			{"Shop address", &form.Shop.Address},
			{"Zip code", &form.Shop.ZipCode},
			{"Telegram (optional)", &form.Shop.Telegram},
		}
		for _, f := range fields {
			if *f.dst, err = a.prompt(f.label); err != nil {
				return err
			}
		}
	} else {
		if form.Address, err = a.prompt("Address (optional)"); err != nil {
			return err
		}
		if *avatarPath != "" {
			data, err := os.ReadFile(*avatarPath)
			if err != nil {
				return err
			}
			form.Avatar = &account.Upload{Name: filepath.Base(*avatarPath), Data: data}
		}
	}

	if form.Password, err = a.prompt("Password"); err != nil {
		return err
	}
	if form.Confirm, err = a.prompt("Confirm password"); err != nil {
		return err
	}

	res, err := form.Submit(a.ctx)
	if errors.Is(err, signup.ErrPartialSignup) {
		fmt.Fprintln(a.out, "You are logged in; finish your shop later from your account.")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed up as %s (%s)\n", res.User.Email, res.User.Role)
	if res.Shop != nil {
		fmt.Fprintf(a.out, "Shop #%d %q is %s\n", res.Shop.ID, res.Shop.Name, res.Shop.Status)
	}
	return nil
}

// verify asks for a contact until it is verified. An empty code resends.
func (a *app) verify(ch *signup.Channel, label string) error {
	for !ch.Verified() {
		if ch.State() == signup.Idle {
			v, err := a.prompt(label)
			if err != nil {
				return err
			}
			ch.SetValue(v)
			// failures were already reported; ask again
			if err := ch.RequestCode(a.ctx); err != nil {
				if a.ctx.Err() != nil {
					return err
				}
				continue
			}
		}

		if ch.Code() == "" {
			code, err := a.prompt(fmt.Sprintf("%d-digit code (empty to resend)", signup.CodeLength))
			if err != nil {
				return err
			}
			if code == "" {
				if err := ch.RequestCode(a.ctx); err != nil && a.ctx.Err() != nil {
					return err
				}
				continue
			}
			ch.SetCode(code)
		}
		if err := ch.Verify(a.ctx); err != nil {
			if a.ctx.Err() != nil {
				return err
			}
			// wrong code: ask again
			ch.SetCode("")
		}
	}
	return nil
}
