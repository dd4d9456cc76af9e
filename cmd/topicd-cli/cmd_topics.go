package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clustermail/topicd/client"
)

func newTopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Run and inspect topic models",
	}
	cmd.AddCommand(newTopicsRunCmd())
	cmd.AddCommand(newTopicsIncrementalCmd())
	cmd.AddCommand(newTopicsTimeframeCmd())
	cmd.AddCommand(newTopicsUpdateCmd())
	cmd.AddCommand(newTopicsReassignCmd())
	return cmd
}

func newTopicsRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <user-email>",
		Short: "Recluster all of a user's emails",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Topics.Retopic(context.Background(), args[0])
			if err != nil {
				fatal("topics run", err)
			}
			if flagFmt == "table" {
				printTopicTable(resp.Topics)
				return
			}
			output(resp)
		},
	}
}

func newTopicsIncrementalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "incremental <user-email>",
		Short: "Recluster using time windows, preferring the shortest window with enough emails",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Topics.Incremental(context.Background(), args[0])
			if err != nil {
				fatal("topics incremental", err)
			}
			if flagFmt == "table" && resp.Modeled != nil {
				fmt.Printf("window: %s\n", resp.Modeled.Window)
				printTopicTable(resp.Modeled.Topics)
				return
			}
			output(resp)
		},
	}
}

func newTopicsTimeframeCmd() *cobra.Command {
	var timeframe string
	cmd := &cobra.Command{
		Use:   "timeframe <user-email>",
		Short: "Read stored topic assignments within a named window",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Topics.Timeframe(context.Background(), args[0], timeframe)
			if err != nil {
				fatal("topics timeframe", err)
			}
			if flagFmt == "table" {
				headers := []string{"GROUP", "TOPIC", "EMAIL"}
				var rows [][]string
				for _, r := range resp.Topics {
					rows = append(rows, []string{
						strconv.Itoa(r.GroupID), r.TopicName, strconv.FormatInt(r.EmailID, 10),
					})
				}
				formatTable(headers, rows)
				return
			}
			output(resp)
		},
	}
	cmd.Flags().StringVar(&timeframe, "window", "all_time", "Window label (e.g. 1_month, 6_months, all_time)")
	return cmd
}

func newTopicsUpdateCmd() *cobra.Command {
	var docs []string
	cmd := &cobra.Command{
		Use:   "update <user-email>",
		Short: "Refit the model over stored emails plus new documents",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Topics.Update(context.Background(), args[0], docs)
			if err != nil {
				fatal("topics update", err)
			}
			output(resp)
		},
	}
	cmd.Flags().StringArrayVar(&docs, "doc", nil, "New document text (repeatable)")
	cmd.MarkFlagRequired("doc") //nolint:errcheck
	return cmd
}

func newTopicsReassignCmd() *cobra.Command {
	var emailID int64
	var topicName string
	cmd := &cobra.Command{
		Use:   "reassign <user-email>",
		Short: "Move an email into a named topic, creating the topic if needed",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Topics.Reassign(context.Background(), client.ReassignRequest{
				User:      args[0],
				EmailID:   emailID,
				TopicName: topicName,
			})
			if err != nil {
				fatal("topics reassign", err)
			}
			output(resp)
		},
	}
	cmd.Flags().Int64Var(&emailID, "email-id", 0, "Email ID to move")
	cmd.Flags().StringVar(&topicName, "topic", "", "Destination topic name")
	cmd.MarkFlagRequired("email-id") //nolint:errcheck
	cmd.MarkFlagRequired("topic")    //nolint:errcheck
	return cmd
}

func printTopicTable(topics []client.Topic) {
	headers := []string{"GROUP", "NAME"}
	var rows [][]string
	for _, t := range topics {
		rows = append(rows, []string{strconv.Itoa(t.GroupID), t.Name})
	}
	formatTable(headers, rows)
}
