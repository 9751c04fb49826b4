package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/hongminglow/wayfarer/internal/api"
	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/view"
)

func servicesCommand(app *App) *cli.Command {
	var area, category, filter string
	return &cli.Command{
		Name:    "services",
		Summary: "Find hospitals, police, ATMs, pharmacies and transport",
		Usage:   "wayfarer services [--area NAME] [--category NAME] [--filter TEXT]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("services", pflag.ContinueOnError)
			flagSet.StringVar(&area, "area", "", "only services in this area")
			flagSet.StringVar(&category, "category", "", "hospital, police, atm, pharmacy or transport")
			flagSet.StringVar(&filter, "filter", "", "match name, area, address or category locally")
			return flagSet
		},
		Subcommands: []*cli.Command{
			createServiceCommand(app),
			updateServiceCommand(app),
			deleteServiceCommand(app),
		},
		Run: func(args []string) error {
			query := api.ServiceQuery{Area: area}
			if category != "" {
				parsed, ok := models.ParseServiceCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				query.Category = string(parsed)
			}
			services := view.NewServices(app.Ctx, app.Client, app.Sessions)
			defer services.Close()
			if err := services.SetQuery(app.Ctx, query); err != nil {
				return app.fail(err, "Could not load services.")
			}
			services.SetFilter(filter)

			out := app.printer()
			snapshot := services.Snapshot()
			if len(snapshot.Visible) == 0 {
				out.Muted("No services found.")
				return nil
			}
			for _, service := range snapshot.Visible {
				out.Line("%s %s %s", out.Styles.Muted.Render(fmt.Sprintf("#%d", service.ID)),
					out.Styles.Title.Render(service.Name), out.Styles.Accent.Render(string(service.Category)))
				out.Field("Area", service.Area)
				out.Field("Address", service.Address)
				out.Field("Phone", service.Phone)
				out.Field("Hours", service.OpenHours)
				out.Field("Notes", service.Notes)
			}
			return nil
		},
	}
}

// serviceFlags binds the editable service fields to a flag set.
type serviceFlags struct {
	set       *pflag.FlagSet
	name      string
	category  string
	area      string
	address   string
	phone     string
	hours     string
	notes     string
	latitude  float64
	longitude float64
}

func (f *serviceFlags) bind(name string) *pflag.FlagSet {
	f.set = pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.set.StringVar(&f.name, "name", "", "service name")
	f.set.StringVar(&f.category, "category", "", "hospital, police, atm, pharmacy or transport")
	f.set.StringVar(&f.area, "area", "", "area name")
	f.set.StringVar(&f.address, "address", "", "street address")
	f.set.StringVar(&f.phone, "phone", "", "contact number")
	f.set.StringVar(&f.hours, "hours", "", "opening hours, e.g. 24/7")
	f.set.StringVar(&f.notes, "notes", "", "free-form notes")
	f.set.Float64Var(&f.latitude, "lat", 0, "latitude")
	f.set.Float64Var(&f.longitude, "lng", 0, "longitude")
	return f.set
}

func (f *serviceFlags) patch() (dto.ServicePatch, error) {
	var patch dto.ServicePatch
	textFields := map[string]**string{
		"name":    &patch.Name,
		"area":    &patch.Area,
		"address": &patch.Address,
		"phone":   &patch.Phone,
		"hours":   &patch.OpenHours,
		"notes":   &patch.Notes,
	}
	values := map[string]string{
		"name": f.name, "area": f.area, "address": f.address,
		"phone": f.phone, "hours": f.hours, "notes": f.notes,
	}
	for flagName, field := range textFields {
		if f.set.Changed(flagName) {
			value := values[flagName]
			*field = &value
		}
	}
	if f.set.Changed("category") {
		category, ok := models.ParseServiceCategory(f.category)
		if !ok {
			return dto.ServicePatch{}, fmt.Errorf("unknown category %q", f.category)
		}
		patch.Category = &category
	}
	if f.set.Changed("lat") {
		patch.Latitude = &f.latitude
	}
	if f.set.Changed("lng") {
		patch.Longitude = &f.longitude
	}
	return patch, nil
}

func createServiceCommand(app *App) *cli.Command {
	var flags serviceFlags
	return &cli.Command{
		Name:    "create",
		Summary: "Add a service (admins only)",
		Usage:   "wayfarer services create --name NAME --category NAME --area NAME [flags]",
		Flags:   func() *pflag.FlagSet { return flags.bind("create") },
		Run: func(args []string) error {
			patch, err := flags.patch()
			if err != nil {
				return err
			}
			if patch.Name == nil || patch.Category == nil {
				return fmt.Errorf("--name and --category are required")
			}
			var service models.Service
			patch.Apply(&service)

			services := view.NewServices(app.Ctx, app.Client, app.Sessions)
			defer services.Close()
			created, err := services.Create(app.Ctx, service)
			if err != nil {
				return app.report(services.Snapshot().ActionError)
			}
			app.printer().Success("Created service #%d %s.", created.ID, created.Name)
			return nil
		},
	}
}

func updateServiceCommand(app *App) *cli.Command {
	var flags serviceFlags
	return &cli.Command{
		Name:    "update",
		Summary: "Edit a service (admins only)",
		Usage:   "wayfarer services update <service-id> [flags]",
		Flags:   func() *pflag.FlagSet { return flags.bind("update") },
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer services update <service-id> [flags]"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch, err := flags.patch()
			if err != nil {
				return err
			}
			services := view.NewServices(app.Ctx, app.Client, app.Sessions)
			defer services.Close()
			updated, err := services.Update(app.Ctx, id, patch)
			if err != nil {
				return app.report(services.Snapshot().ActionError)
			}
			app.printer().Success("Updated service #%d %s.", updated.ID, updated.Name)
			return nil
		},
	}
}

func deleteServiceCommand(app *App) *cli.Command {
	var yes bool
	return &cli.Command{
		Name:    "delete",
		Summary: "Remove a service (admins only)",
		Usage:   "wayfarer services delete <service-id> [--yes]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			flagSet.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer services delete <service-id>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			services := view.NewServices(app.Ctx, app.Client, app.Sessions)
			defer services.Close()
			// Loaded so the confirmation can name the service.
			if err := services.Mount(app.Ctx); err != nil {
				app.Logger.Debug("services unavailable", "error", err)
			}
			if err := services.Delete(app.Ctx, id, app.confirm(yes)); err != nil {
				return app.fail(err, "Could not delete the service.")
			}
			app.printer().Success("Deleted service #%d.", id)
			return nil
		},
	}
}
