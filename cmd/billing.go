package cmd

import (
	"fmt"
	"os"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show the job posting quota",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		q, err := application.Resources.Quota(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch quota: %w", err)
		}

		cmd.Println(titleStyle.Render("Posting Quota"))
		cmd.Printf("%s %d of %d used, %d left\n", labelStyle.Render("Free:"), q.UsedFreeQuota, q.FreeQuota, q.RemainingFreeQuota)
		cmd.Printf("%s %d\n", labelStyle.Render("Paid Credits:"), q.PaidQuota)
		cmd.Printf("%s %s\n", labelStyle.Render("Price Per Job:"), rupiah(q.PricePerJob))
		if !q.CanPublishFree() {
			cmd.Println(errorStyle.Render("\nNo credits left. The next publish needs a payment."))
			cmd.Println("See 'karir packages' and 'karir payment submit'.")
		}
		return nil
	},
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List purchasable posting packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		pkgs, err := application.Resources.Packages(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch packages: %w", err)
		}

		cmd.Println(titleStyle.Render("Packages"))
		for _, p := range pkgs {
			cmd.Printf("%s %s: %d credits for %s\n", labelStyle.Render(p.ID), p.Name, p.JobCredits, rupiah(p.Price))
			if p.Description != "" {
				cmd.Printf("    %s\n", mutedStyle.Render(p.Description))
			}
		}
		return nil
	},
}

var paymentCmd = &cobra.Command{
	Use:     "payment",
	Aliases: []string{"payments"},
	Short:   "Submit and track payments",
}

var listPaymentsCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted payments",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		list, err := application.Resources.Payments(cmd.Context(), params.Params{"status": status})
		if err != nil {
			return fmt.Errorf("fetch payments: %w", err)
		}
		if len(list.Payments) == 0 {
			cmd.Println("No payments yet.")
			return nil
		}

		cmd.Println(titleStyle.Render("Payments"))
		for _, p := range list.Payments {
			cmd.Printf("%4d  %-14s %s  %s  %s\n", p.ID, rupiah(p.Amount), badge(string(p.Status)),
				paymentTarget(&p), mutedStyle.Render(formatDate(p.SubmittedAt)))
		}
		return nil
	},
}

func paymentTarget(p *models.Payment) string {
	if p.JobID != nil {
		return fmt.Sprintf("job %d", *p.JobID)
	}
	if p.PackageID != "" {
		return "package " + p.PackageID
	}
	return "-"
}

var showPaymentCmd = &cobra.Command{
	Use:   "show <payment-id>",
	Short: "Show a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "payment")
		if err != nil {
			return err
		}
		p, err := application.Resources.Payment(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch payment: %w", err)
		}

		cmd.Println(titleStyle.Render(fmt.Sprintf("Payment #%d", p.ID)))
		cmd.Printf("%s %s\n", labelStyle.Render("Amount:"), rupiah(p.Amount))
		cmd.Printf("%s %s\n", labelStyle.Render("Status:"), badge(string(p.Status)))
		cmd.Printf("%s %s\n", labelStyle.Render("For:"), paymentTarget(p))
		cmd.Printf("%s %s\n", labelStyle.Render("Submitted:"), formatDate(p.SubmittedAt))
		if p.ConfirmedAt != nil {
			cmd.Printf("%s %s\n", labelStyle.Render("Confirmed:"), formatDate(*p.ConfirmedAt))
			cmd.Printf("Download the invoice with 'karir payment invoice %d'\n", p.ID)
		}
		if p.Note != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("Note:"), p.Note)
		}
		return nil
	},
}

var submitPaymentCmd = &cobra.Command{
	Use:   "submit",
	Short: "Upload a bank transfer receipt",
	Example: `  karir payment submit --job 12 --amount 30000 --proof ./transfer.jpg
  karir payment submit --package bundle-5 --amount 125000 --proof ./transfer.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}

		proof := models.PaymentProof{}
		proof.JobID, _ = cmd.Flags().GetInt64("job")
		proof.PackageID, _ = cmd.Flags().GetString("package")
		proof.Amount, _ = cmd.Flags().GetInt64("amount")
		proof.FilePath, _ = cmd.Flags().GetString("proof")
		proof.Note, _ = cmd.Flags().GetString("note")
		if err := validateInput(proof); err != nil {
			return err
		}

		p, err := application.Mutations.SubmitPaymentProof(cmd.Context(), proof)
		if err != nil {
			return fmt.Errorf("submit payment: %w", err)
		}
		cmd.Printf("✓ Payment #%d submitted for review (%s)\n", p.ID, rupiah(p.Amount))
		return nil
	},
}

var invoiceCmd = &cobra.Command{
	Use:   "invoice <payment-id>",
	Short: "Download the PDF invoice of a confirmed payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "payment")
		if err != nil {
			return err
		}

		data, err := application.Client.Invoice(cmd.Context(), id)
		if err != nil {
			if api.IsNotFound(err) {
				return fmt.Errorf("no invoice for payment %d yet", id)
			}
			return fmt.Errorf("download invoice: %w", err)
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = fmt.Sprintf("invoice-%d.pdf", id)
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}
		cmd.Printf("✓ Saved %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd, packagesCmd, paymentCmd)
	paymentCmd.AddCommand(listPaymentsCmd, showPaymentCmd, submitPaymentCmd, invoiceCmd)

	listPaymentsCmd.Flags().String("status", "", "Filter by status: pending, confirmed, rejected")

	submitPaymentCmd.Flags().Int64("job", 0, "Job ID the payment unlocks")
	submitPaymentCmd.Flags().String("package", "", "Package ID being bought")
	submitPaymentCmd.Flags().Int64("amount", 0, "Transferred amount in rupiah")
	submitPaymentCmd.Flags().String("proof", "", "Receipt image or PDF")
	submitPaymentCmd.Flags().String("note", "", "Note for the reviewer")

	invoiceCmd.Flags().StringP("output", "o", "", "Output file (default invoice-<id>.pdf)")
}
