package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/storefront/internal/contact"
	"github.com/donaldgifford/storefront/internal/notify"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

func contactCmd() *cobra.Command {
	var req domain.ContactRequest

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a contact or quote request",
		Example: `  # Ask for a quote on a service
  storefront contact --type devis --service svc-9 \
    --name "Awa Diop" --email awa@example.com --message "40 sacs de ciment"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			s := contact.NewSubmitter(
				newClient(cfg),
				notify.NewWriterNotifier(os.Stderr),
				newLogger(cfg),
				contact.WithPath(cfg.Contact.Path),
			)
			if err := s.Validate(&req); err != nil {
				return err
			}
			if !s.Submit(cmd.Context(), &req) {
				return errors.New(contact.MsgFailed)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Nom, "name", "", "sender name")
	f.StringVar(&req.Email, "email", "", "sender email")
	f.StringVar(&req.Telephone, "phone", "", "sender phone number")
	f.StringVar(&req.Message, "message", "", "request body")
	f.StringVar(&req.Type, "type", "contact", "request type (contact, devis)")
	f.StringVar(&req.ServiceID, "service", "", "service the request is about")

	return cmd
}
