package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"marketplace/internal/avatar"
	"marketplace/internal/notify"
	"marketplace/internal/pkg/phone"
	"marketplace/internal/productimport"
	"marketplace/internal/storefront"
)

func shopCommand(a *app, args []string) error {
	fs := newFlags("shop")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		fs.Usage()
		return errors.New("shop id required")
	}

	prof, err := storefront.LoadShopProfile(a.ctx, a.api, id)
	if err != nil {
		return err
	}
	shop, origin := prof.Shop, a.api.Origin()

	badge := ""
	if shop.Verified {
		badge = " [verified]"
	}
	fmt.Fprintf(a.out, "%s%s\n%s\n\n", shop.Name, badge, shop.Description)
	fmt.Fprintf(a.out, "  address: %s %s\n", shop.Address, shop.ZipCode)
	fmt.Fprintf(a.out, "  phone:   %s\n", phone.Format(shop.Phone))
	if shop.Banner != "" {
		fmt.Fprintf(a.out, "  banner:  %s\n", avatar.Resolve(shop.Banner, origin))
	}
	if shop.Owner != nil {
		av := avatar.Render(shop.Owner.Name, string(shop.Owner.Avatar), origin)
		fmt.Fprintf(a.out, "  owner:   %s [%s]\n", shop.Owner.Name, av.Initials)
	}
	st := prof.Stats
	fmt.Fprintf(a.out, "  %d products, %d sold, %d reviews, rating %.1f\n\n", st.Products, st.Sold, st.Reviews, st.Rating)

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tRATING")
	for _, p := range prof.Products {
		c := storefront.ProductCard(p, origin)
		price := fmt.Sprintf("%.2f MAD", c.Price)
		if c.OnSale() {
			price = fmt.Sprintf("%.2f MAD (-%d%%)", c.Price, c.DiscountPercent)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\n", c.ID, c.Name, price, c.Stock, c.Rating)
	}
	return w.Flush()
}

func importCommand(a *app, args []string) error {
	fs := newFlags("import")
	template := fs.Bool("template", false, "write an empty sheet with the header row to the file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := fs.Arg(0)
	if path == "" {
		fs.Usage()
		return errors.New("file required")
	}

	if *template {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := productimport.Template(f); err != nil {
			return err
		}
		notify.Success(a.notify, "Template written to "+path)
		return nil
	}

	u, err := a.requireLogin()
	if err != nil {
		return err
	}
	if !u.IsSeller() {
		return errors.New("only sellers can import products")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, rowErrs, err := productimport.Parse(f)
	if err != nil {
		return err
	}
	for _, re := range rowErrs {
		fmt.Fprintf(a.out, "skipped %v\n", re)
	}

	var created int
	for _, r := range productimport.Import(a.ctx, a.api, rows) {
		if r.Err != nil {
			fmt.Fprintf(a.out, "row %d failed: %s\n", r.Line, errorText(r.Err))
			continue
		}
		created++
	}
	notify.Info(a.notify, fmt.Sprintf("Imported %d of %d products", created, len(rows)+len(rowErrs)))
	return nil
}
