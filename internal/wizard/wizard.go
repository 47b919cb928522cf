// Package wizard implements the interactive setup flow behind `dqwatch init`.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/ymajdalawi/dqwatch/internal/config"
)

// Spec holds all fields collected during the interactive wizard. Secrets are
// never collected; the generated file points at the environment variables
// that carry them.
type Spec struct {
	PrimaryHost string
	PrimaryPort int
	PrimaryUser string
	PrimaryName string

	SecondaryEnabled bool
	SecondaryHost    string
	SecondaryPort    int
	SecondaryUser    string
	SecondaryName    string

	TenantID   string
	ClientID   string
	Sender     string
	Recipients []string
}

const configTemplate = `# dqwatch configuration
#
# Secrets are read from the environment:
#   {{ .EnvPrimaryPassword }}    primary database password
#   {{ .EnvSecondaryPassword }}  secondary database password
#   {{ .EnvEmailClientSecret }}  Microsoft Graph client secret

databases:
  primary:
    host: {{ .Spec.PrimaryHost }}
    port: {{ .Spec.PrimaryPort }}
    user: {{ .Spec.PrimaryUser }}
    name: {{ .Spec.PrimaryName }}
{{- if .Spec.SecondaryEnabled }}
  secondary:
    host: {{ .Spec.SecondaryHost }}
    port: {{ .Spec.SecondaryPort }}
    user: {{ .Spec.SecondaryUser }}
    name: {{ .Spec.SecondaryName }}
{{- end }}

email:
  tenant_id: {{ .Spec.TenantID }}
  client_id: {{ .Spec.ClientID }}
  sender: {{ .Spec.Sender }}
  recipients:
{{- range .Spec.Recipients }}
    - {{ . }}
{{- end }}

report:
  max_list_items: {{ .MaxListItems }}
  max_table_rows: {{ .MaxTableRows }}
`

// Run runs an interactive huh form to collect connection and email settings.
func Run(in io.Reader, out io.Writer) (*Spec, error) {
	var (
		primaryHost   = config.DefaultDBHost
		primaryPort   = strconv.Itoa(config.DefaultDBPort)
		primaryUser   string
		primaryName   string
		wantSecondary bool
		secondaryHost = config.DefaultDBHost
		secondaryPort = strconv.Itoa(config.DefaultDBPort)
		secondaryUser string
		secondaryName string
		tenantID      string
		clientID      string
		sender        string
		recipientsRaw string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Primary database host").
				Value(&primaryHost).
				Validate(validateRequired("host")),
			huh.NewInput().
				Title("Primary database port").
				Value(&primaryPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Primary database user").
				Value(&primaryUser).
				Validate(validateRequired("user")),
			huh.NewInput().
				Title("Primary database name").
				Value(&primaryName).
				Validate(validateRequired("database name")),
			huh.NewConfirm().
				Title("Configure a secondary database?").
				Description("Needed by cross-system checks such as ERP sync").
				Value(&wantSecondary),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Secondary database host").
				Value(&secondaryHost).
				Validate(validateRequired("host")),
			huh.NewInput().
				Title("Secondary database port").
				Value(&secondaryPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Secondary database user").
				Value(&secondaryUser).
				Validate(validateRequired("user")),
			huh.NewInput().
				Title("Secondary database name").
				Value(&secondaryName).
				Validate(validateRequired("database name")),
		).WithHideFunc(func() bool { return !wantSecondary }),
		huh.NewGroup(
			huh.NewInput().
				Title("Entra tenant ID").
				Value(&tenantID).
				Validate(validateRequired("tenant ID")),
			huh.NewInput().
				Title("Application (client) ID").
				Value(&clientID).
				Validate(validateRequired("client ID")),
			huh.NewInput().
				Title("Sender address").
				Placeholder("alerts@example.com").
				Value(&sender).
				Validate(validateRequired("sender")),
			huh.NewInput().
				Title("Recipients").
				Description("Comma-separated email addresses").
				Placeholder("ops@example.com, data@example.com").
				Value(&recipientsRaw).
				Validate(func(s string) error {
					if len(splitAndTrim(s)) == 0 {
						return fmt.Errorf("at least one recipient is required")
					}
					return nil
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	spec := &Spec{
		PrimaryHost: strings.TrimSpace(primaryHost),
		PrimaryUser: strings.TrimSpace(primaryUser),
		PrimaryName: strings.TrimSpace(primaryName),
		TenantID:    strings.TrimSpace(tenantID),
		ClientID:    strings.TrimSpace(clientID),
		Sender:      strings.TrimSpace(sender),
		Recipients:  splitAndTrim(recipientsRaw),
	}
	spec.PrimaryPort, _ = strconv.Atoi(strings.TrimSpace(primaryPort))

	if wantSecondary {
		spec.SecondaryEnabled = true
		spec.SecondaryHost = strings.TrimSpace(secondaryHost)
		spec.SecondaryUser = strings.TrimSpace(secondaryUser)
		spec.SecondaryName = strings.TrimSpace(secondaryName)
		spec.SecondaryPort, _ = strconv.Atoi(strings.TrimSpace(secondaryPort))
	}
	return spec, nil
}

// RenderConfig renders a dqwatch.yaml from the given spec.
func RenderConfig(spec *Spec) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := struct {
		Spec                 *Spec
		EnvPrimaryPassword   string
		EnvSecondaryPassword string
		EnvEmailClientSecret string
		MaxListItems         int
		MaxTableRows         int
	}{
		Spec:                 spec,
		EnvPrimaryPassword:   config.EnvPrimaryPassword,
		EnvSecondaryPassword: config.EnvSecondaryPassword,
		EnvEmailClientSecret: config.EnvEmailClientSecret,
		MaxListItems:         config.DefaultMaxListItems,
		MaxTableRows:         config.DefaultMaxTableRows,
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validatePort(s string) error {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
