package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/approvalflow"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/engine"
	"gopkg.in/yaml.v3"
)

type app struct {
	configPath string
	srv        *approvalflow.Service
	out        io.Writer
}

func newApp(out io.Writer) *app {
	return &app{out: out}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "approvalflow",
		Short:         "Workflow approval engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.srv != nil {
				return nil
			}
			config, err := approvalflow.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.srv, err = approvalflow.New(cmd.Context(), config)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.srv == nil {
				return nil
			}
			return a.srv.Close(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (YAML)")
	root.AddCommand(
		a.workflowsCommand(),
		a.submitCommand(),
		a.resubmitCommand(),
		a.actCommand(),
		a.recoverCommand(),
		a.showCommand(),
		a.historyCommand(),
		a.inboxCommand(),
	)
	return root
}

func (a *app) engine() *engine.Service {
	return a.srv.Engine()
}

func (a *app) print(value interface{}) error {
	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func (a *app) workflowsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List registered workflow definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			definitions, err := a.srv.Workflows().List(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(definitions)
		},
	}
}

func (a *app) submitCommand() *cobra.Command {
	var initiator string
	var version int
	var fields []string
	cmd := &cobra.Command{
		Use:   "submit WORKFLOW_ID",
		Short: "Create a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formData, err := parseForm(fields)
			if err != nil {
				return err
			}
			var req *model.Request
			if version > 0 {
				req, err = a.engine().CreateRequestVersion(cmd.Context(), args[0], version, formData, initiator)
			} else {
				req, err = a.engine().CreateRequest(cmd.Context(), args[0], formData, initiator)
			}
			if err != nil {
				return err
			}
			return a.print(req)
		},
	}
	cmd.Flags().StringVarP(&initiator, "initiator", "u", "", "initiator user id")
	cmd.Flags().IntVar(&version, "version", 0, "workflow version, latest active when 0")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "form field as key=value")
	_ = cmd.MarkFlagRequired("initiator")
	return cmd
}

func (a *app) resubmitCommand() *cobra.Command {
	var initiator string
	var fields []string
	cmd := &cobra.Command{
		Use:   "resubmit REQUEST_ID",
		Short: "Create a new request from a returned one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var formData map[string]interface{}
			if len(fields) > 0 {
				var err error
				if formData, err = parseForm(fields); err != nil {
					return err
				}
			}
			req, err := a.engine().Resubmit(cmd.Context(), args[0], initiator, formData)
			if err != nil {
				return err
			}
			return a.print(req)
		},
	}
	cmd.Flags().StringVarP(&initiator, "initiator", "u", "", "initiator user id")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "form field as key=value, previous form data when omitted")
	_ = cmd.MarkFlagRequired("initiator")
	return cmd
}

func (a *app) actCommand() *cobra.Command {
	var actor, comment string
	cmd := &cobra.Command{
		Use:   "act REQUEST_ID APPROVE|REJECT|RETURN",
		Short: "Apply an assignee decision",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := model.ParseUserAction(args[1])
			if err != nil {
				return err
			}
			req, err := a.engine().Act(cmd.Context(), args[0], actor, action, comment)
			if err != nil {
				return err
			}
			return a.print(req)
		},
	}
	cmd.Flags().StringVarP(&actor, "actor", "u", "", "acting user id")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "comment")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func (a *app) recoverCommand() *cobra.Command {
	var admin string
	var recovery engine.Recovery
	cmd := &cobra.Command{
		Use:   "recover REQUEST_ID",
		Short: "Resolve a request halted without assignees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := a.engine().Recover(cmd.Context(), args[0], admin, recovery)
			if err != nil {
				return err
			}
			return a.print(outcome)
		},
	}
	cmd.Flags().StringVarP(&admin, "admin", "u", "", "administrator user id")
	cmd.Flags().StringVar(&recovery.AssignTo, "assign-to", "", "force a single assignee")
	cmd.Flags().BoolVar(&recovery.ReRun, "rerun", false, "re-resolve assignees of the halted step")
	cmd.Flags().StringVarP(&recovery.Comment, "comment", "m", "", "comment")
	cmd.MarkFlagsMutuallyExclusive("assign-to", "rerun")
	cmd.MarkFlagsOneRequired("assign-to", "rerun")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show REQUEST_ID",
		Short: "Show a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.engine().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(req)
		},
	}
}

func (a *app) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history REQUEST_ID",
		Short: "Show the request audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := a.engine().History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(actions)
		},
	}
}

func (a *app) inboxCommand() *cobra.Command {
	var user, initiator string
	var halted bool
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List requests pending on a user, created by a user or halted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var requests []*model.Request
			var err error
			switch {
			case halted:
				requests, err = a.engine().ListPendingAssignment(cmd.Context())
			case initiator != "":
				requests, err = a.engine().ListByInitiator(cmd.Context(), initiator)
			default:
				requests, err = a.engine().PendingFor(cmd.Context(), user)
			}
			if err != nil {
				return err
			}
			return a.print(requests)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "assignee user id")
	cmd.Flags().StringVar(&initiator, "initiator", "", "initiator user id")
	cmd.Flags().BoolVar(&halted, "halted", false, "requests pending assignment")
	cmd.MarkFlagsOneRequired("user", "initiator", "halted")
	cmd.MarkFlagsMutuallyExclusive("user", "initiator", "halted")
	return cmd
}

// parseForm decodes key=value pairs; values are YAML scalars so numbers stay numeric
func parseForm(fields []string) (map[string]interface{}, error) {
	ret := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		key, text, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", field)
		}
		var value interface{}
		if err := yaml.Unmarshal([]byte(text), &value); err != nil || value == nil {
			value = text
		}
		ret[key] = value
	}
	return ret, nil
}
