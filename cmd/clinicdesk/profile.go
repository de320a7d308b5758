package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/mrsinham/clinicdesk/internal/profile"
)

func profileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the doctor's profile",
	}
	cmd.AddCommand(profileShowCmd(a))
	cmd.AddCommand(profileEditCmd(a))
	return cmd
}

func newProfileStore(a *app) (*profile.Store, *clinicapi.Client, error) {
	client, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	return profile.NewStore(client, a.logger), client, nil
}

func profileFields(p *clinicapi.DoctorProfile) []field {
	return []field{
		{"Name", strings.TrimSpace(p.FirstName + " " + p.LastName)},
		{"Title", p.ProfessionalTitle},
		{"Speciality", p.Speciality},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Experience", p.Experience.String()},
		{"Booking", p.BookingType},
		{"Status", p.Status},
		{"Visit fee", p.VisitFee.String()},
		{"Visit duration", p.AverageVisitDuration.String()},
	}
}

func profileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile, working days and reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := newProfileStore(a)
			if err != nil {
				return err
			}
			p, err := store.Fetch(cmd.Context())
			if err != nil {
				return errors.New(clinicapi.Message(err))
			}
			out := cmd.OutOrStdout()
			renderFields(out, profileFields(p))

			days, err := client.AvailableWorkDays(cmd.Context())
			if err != nil {
				return errors.New(clinicapi.Message(err))
			}
			rows := make([][]string, 0, len(days))
			for _, d := range days {
				rows = append(rows, []string{d.Day, d.StartTime, d.EndTime})
			}
			fmt.Fprintln(out)
			renderTable(out, []string{"Day", "From", "To"}, rows)

			reviews, err := client.DoctorReviews(cmd.Context())
			if err != nil {
				return errors.New(clinicapi.Message(err))
			}
			rows = rows[:0]
			for _, r := range reviews {
				rows = append(rows, []string{r.PatientName, r.Rate.String(), r.Comment})
			}
			fmt.Fprintln(out)
			renderTable(out, []string{"Patient", "Rate", "Comment"}, rows)
			return nil
		},
	}
}

func openUpload(path string) (*clinicapi.File, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &clinicapi.File{Name: filepath.Base(path), Reader: f}, func() { f.Close() }, nil
}

func profileEditCmd(a *app) *cobra.Command {
	var (
		firstName, lastName, email, phone string
		speciality, title, experience     string
		bookType, status, visitFee        string
		visitDuration                     int
		photo, sign                       string
		oldPassword, newPassword, confirm string
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Update profile fields; unset flags keep their current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := newProfileStore(a)
			if err != nil {
				return err
			}
			if _, err := store.Fetch(cmd.Context()); err != nil {
				return errors.New(clinicapi.Message(err))
			}

			form := store.InitialFormValues()
			set := func(name string, dst *string, v string) {
				if cmd.Flags().Changed(name) {
					*dst = v
				}
			}
			set("first-name", &form.FirstName, firstName)
			set("last-name", &form.LastName, lastName)
			set("email", &form.Email, email)
			set("phone", &form.Phone, phone)
			set("speciality", &form.Speciality, speciality)
			set("title", &form.ProfessionalTitle, title)
			set("experience", &form.ExperienceYears, experience)
			set("booking", &form.BookType, bookType)
			set("status", &form.Status, status)
			set("visit-fee", &form.VisitFee, visitFee)
			if cmd.Flags().Changed("visit-duration") {
				form.VisitDuration = visitDuration
			}
			form.OldPassword = oldPassword
			form.NewPassword = newPassword
			form.ConfirmPassword = confirm

			if photo != "" {
				file, closeFn, err := openUpload(photo)
				if err != nil {
					return err
				}
				defer closeFn()
				form.Photo = file
			}
			if sign != "" {
				file, closeFn, err := openUpload(sign)
				if err != nil {
					return err
				}
				defer closeFn()
				form.Signature = file
			}

			p, err := store.Update(cmd.Context(), form)
			if err != nil {
				return errors.New(clinicapi.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Profile updated."))
			renderFields(cmd.OutOrStdout(), profileFields(p))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&firstName, "first-name", "", "First name")
	flags.StringVar(&lastName, "last-name", "", "Last name")
	flags.StringVar(&email, "email", "", "Email")
	flags.StringVar(&phone, "phone", "", "Phone")
	flags.StringVar(&speciality, "speciality", "", "Speciality")
	flags.StringVar(&title, "title", "", "Professional title")
	flags.StringVar(&experience, "experience", "", "Years of experience")
	flags.StringVar(&bookType, "booking", "", "Booking type: auto or manual")
	flags.StringVar(&status, "status", "", "Availability status")
	flags.StringVar(&visitFee, "visit-fee", "", "Visit fee")
	flags.IntVar(&visitDuration, "visit-duration", 0, "Average visit duration in minutes")
	flags.StringVar(&photo, "photo", "", "Profile photo to upload")
	flags.StringVar(&sign, "sign", "", "Signature image to upload")
	flags.StringVar(&oldPassword, "old-password", "", "Current password, required to change it")
	flags.StringVar(&newPassword, "new-password", "", "New password")
	flags.StringVar(&confirm, "confirm-password", "", "New password again")
	return cmd
}
