package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/keymatrix/pkg/keywordapi"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/palette"
)

// keywordForm holds the raw answers of the add-keyword form.
type keywordForm struct {
	Name        string
	Subcategory string
	Weight      string
	Active      bool
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

func validateWeight(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("weight must be a number")
	}
	if w < 0 || w > 10 {
		return fmt.Errorf("weight must be between 0 and 10")
	}
	return nil
}

// toInput converts the answers into an API payload.
func (f keywordForm) toInput() (model.KeywordInput, error) {
	if err := validateName(f.Name); err != nil {
		return model.KeywordInput{}, err
	}
	if f.Subcategory == "" {
		return model.KeywordInput{}, errors.New("subcategory is required")
	}
	if err := validateWeight(f.Weight); err != nil {
		return model.KeywordInput{}, err
	}

	name := strings.TrimSpace(f.Name)
	sub := f.Subcategory
	active := f.Active
	in := model.KeywordInput{Name: &name, Subcategory: &sub, IsActive: &active}
	if s := strings.TrimSpace(f.Weight); s != "" {
		w, _ := strconv.ParseFloat(s, 64)
		in.Weight = &w
	}
	return in, nil
}

func subcategoryOptions() []huh.Option[string] {
	subs := palette.Subcategories()
	opts := make([]huh.Option[string], 0, len(subs))
	for _, s := range subs {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s  %s", s.Code, s.Name), s.Code))
	}
	return opts
}

func runAddKeyword(client *keywordapi.Client) error {
	answers := keywordForm{Active: true}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Keyword").
				Value(&answers.Name).
				Validate(validateName),
			huh.NewSelect[string]().
				Title("Subcategory").
				Options(subcategoryOptions()...).
				Value(&answers.Subcategory),
			huh.NewInput().
				Title("Weight (0-10, optional)").
				Value(&answers.Weight).
				Validate(validateWeight),
			huh.NewConfirm().
				Title("Active?").
				Value(&answers.Active),
		),
	).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		return err
	}

	in, err := answers.toInput()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), keywordapi.DefaultTimeout)
	defer cancel()
	k, err := client.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Created keyword %d %q in %s\n", k.ID, k.Name, k.Subcategory)
	return nil
}
