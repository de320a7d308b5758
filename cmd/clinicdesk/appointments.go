package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrsinham/clinicdesk/internal/appointments"
)

func appointmentsCmd(a *app) *cobra.Command {
	var month, status, appointmentType string

	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List the appointments of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := appointments.Filter{}
			var err error
			if f.Status, err = appointments.ParseStatus(status); err != nil {
				return err
			}
			if f.Type, err = appointments.ParseType(appointmentType); err != nil {
				return err
			}
			if month == "" {
				month = appointments.MonthYear(time.Now())
			}
			if _, err := time.Parse("01-2006", month); err != nil {
				return fmt.Errorf("invalid month %q, expected MM-YYYY", month)
			}
			return listAppointments(cmd, a, month, f)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to list as MM-YYYY (default current month)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status: today, pending, visited, cancelled")
	cmd.Flags().StringVar(&appointmentType, "type", "", "Filter by type: first-time, check-up")

	cmd.AddCommand(appointmentsTodayCmd(a))
	cmd.AddCommand(appointmentsCancelCmd(a))
	cmd.AddCommand(appointmentsResultsCmd(a))

	return cmd
}

func newAppointmentsStore(a *app) (*appointments.Store, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return appointments.NewStore(client, a.logger), nil
}

func listAppointments(cmd *cobra.Command, a *app, month string, f appointments.Filter) error {
	store, err := newAppointmentsStore(a)
	if err != nil {
		return err
	}
	if !store.Load(cmd.Context(), month, f) {
		return errors.New(store.Snapshot().Error)
	}

	renderTable(cmd.OutOrStdout(), appointmentHeaders, appointmentRows(store.Visible(f)))
	return nil
}

func appointmentsTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "List today's appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listAppointments(cmd, a, appointments.MonthYear(time.Now()), appointments.Filter{Status: appointments.StatusToday})
		},
	}
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func appointmentsCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "appointment")
			if err != nil {
				return err
			}
			store, err := newAppointmentsStore(a)
			if err != nil {
				return err
			}
			if !store.Cancel(cmd.Context(), id) {
				return errors.New(store.Snapshot().Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Appointment %d cancelled.", id)))
			return nil
		},
	}
}

func appointmentsResultsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "results ID",
		Short: "Show the recorded results of an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "appointment")
			if err != nil {
				return err
			}
			store, err := newAppointmentsStore(a)
			if err != nil {
				return err
			}
			doc, ok := store.Results(cmd.Context(), id)
			if !ok {
				return errors.New(store.Snapshot().Error)
			}
			return renderDocument(cmd.OutOrStdout(), doc)
		},
	}
}
