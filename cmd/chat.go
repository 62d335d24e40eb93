package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/poller"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/resource"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to Karir Nusantara support",
}

var listChatCmd = &cobra.Command{
	Use:   "list",
	Short: "List support conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		convs, err := application.Resources.Conversations(cmd.Context(), params.Params{"status": status})
		if err != nil {
			return fmt.Errorf("fetch conversations: %w", err)
		}
		if len(convs) == 0 {
			cmd.Println("No conversations. Start one with 'karir chat new'")
			return nil
		}

		cmd.Println(titleStyle.Render("Support"))
		for _, c := range convs {
			unread := ""
			if c.UnreadCount > 0 {
				unread = errorStyle.Render(fmt.Sprintf(" (%d new)", c.UnreadCount))
			}
			cmd.Printf("%4d  %-36s %s%s\n", c.ID, c.Title, badge(c.Status), unread)
			if c.LastMessage != "" {
				cmd.Printf("      %s\n", mutedStyle.Render(truncate(c.LastMessage, 70)))
			}
		}
		return nil
	},
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func printMessage(cmd *cobra.Command, m models.Message) {
	who := "You"
	if m.SenderType != "company" {
		who = "Support"
	}
	cmd.Printf("%s %s\n", labelStyle.Render(who), mutedStyle.Render(formatDate(m.CreatedAt)))
	if m.Body != "" {
		cmd.Printf("  %s\n", m.Body)
	}
	if m.AttachmentURL != "" {
		cmd.Printf("  📎 %s\n", m.AttachmentURL)
	}
}

var showChatCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "conversation")
		if err != nil {
			return err
		}
		conv, err := application.Resources.Conversation(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch conversation: %w", err)
		}

		cmd.Println(titleStyle.Render(conv.Title))
		cmd.Printf("%s %s\n\n", labelStyle.Render("Status:"), badge(conv.Status))
		for _, m := range conv.Messages {
			printMessage(cmd, m)
		}
		return nil
	},
}

var newChatCmd = &cobra.Command{
	Use:     "new",
	Short:   "Open a support conversation",
	Example: `  karir chat new --title "Payment not confirmed" --category payment --message "I transferred on Monday"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		in := models.NewConversation{}
		in.Title, _ = cmd.Flags().GetString("title")
		in.Category, _ = cmd.Flags().GetString("category")
		in.Message, _ = cmd.Flags().GetString("message")
		if err := validateInput(in); err != nil {
			return err
		}

		conv, err := application.Mutations.CreateConversation(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		cmd.Printf("✓ Conversation #%d opened. Follow it with 'karir chat watch %d'\n", conv.ID, conv.ID)
		return nil
	},
}

var sendChatCmd = &cobra.Command{
	Use:   "send <conversation-id> <message>",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "conversation")
		if err != nil {
			return err
		}
		body := strings.TrimSpace(strings.Join(args[1:], " "))
		if body == "" {
			return fmt.Errorf("message is empty")
		}

		if _, err := application.Mutations.SendMessage(cmd.Context(), id, body); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		cmd.Println("✓ Sent")
		return nil
	},
}

var uploadChatCmd = &cobra.Command{
	Use:   "upload <conversation-id> <file>",
	Short: "Attach a file to a conversation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "conversation")
		if err != nil {
			return err
		}
		in := struct {
			Path string `validate:"required,file"`
		}{args[1]}
		if err := validateInput(in); err != nil {
			return err
		}
		caption, _ := cmd.Flags().GetString("message")

		msg, err := application.Mutations.UploadAttachment(cmd.Context(), id, in.Path, caption)
		if err != nil {
			return fmt.Errorf("upload attachment: %w", err)
		}
		cmd.Printf("✓ Uploaded %s\n", msg.AttachmentURL)
		return nil
	},
}

var watchChatCmd = &cobra.Command{
	Use:   "watch <conversation-id>",
	Short: "Follow a conversation live (Ctrl+C to stop)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "conversation")
		if err != nil {
			return err
		}
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = application.Config.Poll.ChatInterval
		}
		if interval <= 0 {
			interval = 3 * time.Second
		}

		ctx := cmd.Context()
		key := resource.IDParams(id)
		updates, unsubscribe, err := application.Cache.Subscribe(cache.ChatMessages, key)
		if err != nil {
			return err
		}
		defer unsubscribe()

		p := poller.New(
			[]poller.Task{poller.Refetch(application.Cache, cache.ChatMessages, key, interval)},
			poller.WithGuard(application.Session.IsAuthenticated),
			poller.WithLogger(application.Logger),
		)
		if err := p.Start(ctx); err != nil {
			return err
		}
		defer p.Stop()

		seen := map[int64]bool{}
		titled := false
		for {
			select {
			case <-ctx.Done():
				return nil
			case r, ok := <-updates:
				if !ok {
					if application.SessionExpired() {
						return api.ErrSessionExpired
					}
					return nil
				}
				if r.Err != nil && r.Data == nil {
					return r.Err
				}
				conv, ok := r.Data.(*models.Conversation)
				if !ok {
					continue
				}
				if !titled {
					cmd.Println(titleStyle.Render(conv.Title))
					titled = true
				}
				for _, m := range conv.Messages {
					if !seen[m.ID] {
						seen[m.ID] = true
						printMessage(cmd, m)
					}
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(listChatCmd, showChatCmd, newChatCmd, sendChatCmd, uploadChatCmd, watchChatCmd)

	listChatCmd.Flags().String("status", "", "Filter by status: open, in_progress, closed")

	newChatCmd.Flags().String("title", "", "Subject")
	newChatCmd.Flags().String("category", "other", "account, payment, job, technical or other")
	newChatCmd.Flags().String("message", "", "First message")

	uploadChatCmd.Flags().String("message", "", "Caption")

	watchChatCmd.Flags().Duration("interval", 0, "Refresh interval (default poll.chat_interval)")
}
