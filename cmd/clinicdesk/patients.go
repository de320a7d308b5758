package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrsinham/clinicdesk/internal/patients"
)

func patientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Browse the patient record",
	}
	cmd.AddCommand(patientsListCmd(a))
	cmd.AddCommand(patientsSearchCmd(a))
	cmd.AddCommand(patientsShowCmd(a))
	return cmd
}

func newPatientsStore(a *app) (*patients.Store, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return patients.NewStore(client, a.logger), nil
}

func pageFooter(p patients.Page) string {
	pages := 1
	if p.PerPage > 0 && p.Total > 0 {
		pages = (p.Total + p.PerPage - 1) / p.PerPage
	}
	return mutedStyle.Render(fmt.Sprintf("Page %d of %d (%d total)", p.Current, pages, p.Total))
}

func patientsListCmd(a *app) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patients, one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newPatientsStore(a)
			if err != nil {
				return err
			}
			if !store.FetchPatients(cmd.Context(), page, perPage) {
				return errors.New(store.Snapshot().Error)
			}
			st := store.Snapshot()
			renderTable(cmd.OutOrStdout(), patientHeaders, patientRows(st.Patients))
			fmt.Fprintln(cmd.OutOrStdout(), pageFooter(st.Page))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 10, "Patients per page")
	return cmd
}

func patientsSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search NAME",
		Short: "Search patients by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newPatientsStore(a)
			if err != nil {
				return err
			}
			if !store.Search(cmd.Context(), args[0]) {
				return errors.New(store.Snapshot().Error)
			}
			renderTable(cmd.OutOrStdout(), patientHeaders, patientRows(store.Snapshot().Patients))
			return nil
		},
	}
}

func patientsShowCmd(a *app) *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a patient's profile and appointment history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "patient")
			if err != nil {
				return err
			}
			store, err := newPatientsStore(a)
			if err != nil {
				return err
			}
			if !store.FetchProfile(cmd.Context(), id) {
				return errors.New(store.Snapshot().Error)
			}
			if !store.FetchAppointments(cmd.Context(), id, page, size) {
				return errors.New(store.Snapshot().Error)
			}

			st := store.Snapshot()
			out := cmd.OutOrStdout()
			if err := renderDocument(out, st.Profile); err != nil {
				return err
			}
			fmt.Fprintln(out)
			renderTable(out, appointmentHeaders, appointmentRows(st.Appointments))
			fmt.Fprintln(out, pageFooter(st.AppointmentsPage))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Appointment history page")
	cmd.Flags().IntVar(&size, "size", 5, "Appointments per page")
	return cmd
}
