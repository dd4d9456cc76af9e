package main

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/clustermail/topicd/client"
)

func newEmailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Read and assign individual emails",
	}
	cmd.AddCommand(newEmailsRecentCmd())
	cmd.AddCommand(newEmailsAssignCmd())
	return cmd
}

func newEmailsRecentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent <user-email>",
		Short: "List a user's most recent emails",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			emails, err := apiClient.Emails.Recent(context.Background(), args[0], limit)
			if err != nil {
				fatal("emails recent", err)
			}
			if flagFmt == "table" {
				headers := []string{"ID", "SUBJECT", "SENT"}
				var rows [][]string
				for _, e := range emails {
					sent := ""
					if e.SentAt != nil {
						sent = e.SentAt.Format(time.RFC3339)
					}
					rows = append(rows, []string{strconv.FormatInt(e.EmailID, 10), e.Subject, sent})
				}
				formatTable(headers, rows)
				return
			}
			output(emails)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = server default)")
	return cmd
}

func newEmailsAssignCmd() *cobra.Command {
	var subject, summary string
	cmd := &cobra.Command{
		Use:   "assign <user-email>",
		Short: "Insert a new email and attach it to the closest topic",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			now := time.Now().UTC()
			resp, err := apiClient.Emails.Assign(context.Background(), client.AssignEmailRequest{
				User:    args[0],
				Subject: subject,
				Summary: summary,
				SentAt:  &now,
			})
			if err != nil {
				fatal("emails assign", err)
			}
			output(resp)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&summary, "summary", "", "Email summary text")
	cmd.MarkFlagRequired("subject") //nolint:errcheck
	return cmd
}
