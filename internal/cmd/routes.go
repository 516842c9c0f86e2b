package cmd

import (
	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/ux"
)

func newRoutesCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the pages and who may open them",
		Long: `List every page of the marketplace with the roles allowed to open it.
ACCESS is "-" for public pages, "*" for any signed-in user and otherwise the
accepted roles. The master role opens every page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			routes := routeList(router.DefaultTable().Routes())
			return rt.out.show(routes.views(), routes)
		},
	}
	cmd.AddCommand(newRoutesCheckCmd(rt))
	return cmd
}

func newRoutesCheckCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Check whether the current session may open a page",
		Long: `Run the route guard for path against the stored session. A denied check
exits non-zero and moves to the login page, exactly as opening the page would.

Example:
  padup routes check /admin/kyc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := rt.out

			res, err := rt.app.Guard.Enter(cmd.Context(), args[0])
			if res == nil {
				return err
			}
			view := guardView{
				Path:     args[0],
				Pattern:  res.Route.Pattern,
				Access:   res.Route.Access(),
				Decision: res.Decision.String(),
				Reason:   string(res.Reason),
				Params:   res.Params,
			}
			if res.Session != nil {
				view.Role = res.Session.User.Role.String()
			}
			if serr := p.show(view, view.kv()); serr != nil {
				return serr
			}
			return err
		},
	}
}

type routeView struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Title   string `json:"title" yaml:"title"`
	Access  string `json:"access" yaml:"access"`
}

type routeList []router.Route

func (l routeList) Table() ux.Table {
	table := ux.Table{Headers: []string{"PATTERN", "TITLE", "ACCESS"}}
	for _, r := range l {
		table.Rows = append(table.Rows, []string{r.Pattern, r.Title, r.Access()})
	}
	return table
}

func (l routeList) views() []routeView {
	out := make([]routeView, len(l))
	for i, r := range l {
		out[i] = routeView{Pattern: r.Pattern, Title: r.Title, Access: r.Access()}
	}
	return out
}

type guardView struct {
	Path     string            `json:"path" yaml:"path"`
	Pattern  string            `json:"pattern" yaml:"pattern"`
	Access   string            `json:"access" yaml:"access"`
	Decision string            `json:"decision" yaml:"decision"`
	Reason   string            `json:"reason" yaml:"reason"`
	Role     string            `json:"role,omitempty" yaml:"role,omitempty"`
	Params   map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

func (v guardView) kv() kv {
	out := kv{
		{"Path", v.Path},
		{"Route", v.Pattern},
		{"Access", v.Access},
		{"Decision", v.Decision + " (" + v.Reason + ")"},
	}
	if v.Role != "" {
		out = append(out, [2]string{"Role", v.Role})
	}
	for name, value := range v.Params {
		out = append(out, [2]string{":" + name, value})
	}
	return out
}
