package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrsinham/clinicdesk/internal/prescription"
	"github.com/mrsinham/clinicdesk/internal/tui"
	"github.com/mrsinham/clinicdesk/internal/wizard"
)

func prescribeCmd(a *app) *cobra.Command {
	var (
		patientID     int64
		appointmentID int64
		name          string
		templatePath  string
		exportPath    string
	)

	cmd := &cobra.Command{
		Use:   "prescribe",
		Short: "Write a prescription for a patient's appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if patientID <= 0 {
				return errors.New("--patient is required")
			}
			if appointmentID <= 0 {
				return errors.New("--appointment is required")
			}

			opts := tui.Options{
				Patient: wizard.Patient{
					ID:            patientID,
					Name:          name,
					AppointmentID: appointmentID,
				},
				ExportPath: exportPath,
			}
			if templatePath != "" {
				t, err := wizard.LoadTemplate(templatePath)
				if err != nil {
					return err
				}
				opts.Template = t
			}

			// stderr logs would draw over the alternate screen
			logger := zerolog.Nop()
			if a.cfg.LogFile != "" {
				logger = a.logger
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			store := prescription.NewStore(client, logger)
			saved, err := tui.Run(cmd.Context(), store, logger, opts)
			if err != nil {
				return err
			}
			if saved {
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Prescription saved."))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Prescription discarded."))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&patientID, "patient", 0, "Patient ID")
	cmd.Flags().Int64Var(&appointmentID, "appointment", 0, "Appointment ID the diagnosis is recorded against")
	cmd.Flags().StringVar(&name, "name", "", "Patient name shown in the header")
	cmd.Flags().StringVar(&templatePath, "template", "", "YAML template pre-filling the medicine sections")
	cmd.Flags().StringVar(&exportPath, "export", "prescription-preview.yaml", "Where ctrl+e writes the preview")

	return cmd
}
