package main

// seed fills the store with a development user, two workspaces, and a few
// repos with nested file trees. Credentials for the MCP server side:
//
//	BITBUCKET_EMAIL=dev@acme.test
//	BITBUCKET_TOKEN=local-dev-token
func seed(s *store) {
	s.user = account{
		Username:    "devuser",
		DisplayName: "Dev User",
		UUID:        "{7f1c8e2a-0000-4000-8000-000000000001}",
		AccountID:   "557058:dev",
		email:       "dev@acme.test",
		token:       "local-dev-token",
	}

	s.workspaces = []workspace{
		{Slug: "acme", Name: "Acme Corp", UUID: "{9a1b0000-0000-4000-8000-000000000010}", IsPrivate: true},
		{Slug: "acme-labs", Name: "Acme Labs", UUID: "{9a1b0000-0000-4000-8000-000000000011}", IsPrivate: true},
	}

	s.repos["acme"] = []repository{
		{Slug: "billing-api", Name: "billing-api", FullName: "acme/billing-api", Description: "Billing service", IsPrivate: true, UpdatedOn: "2026-08-20T10:15:00+00:00"},
		{Slug: "user-service", Name: "user-service", FullName: "acme/user-service", Description: "User accounts", IsPrivate: true, UpdatedOn: "2026-08-18T09:00:00+00:00"},
	}
	s.repos["acme-labs"] = []repository{
		{Slug: "playground", Name: "playground", FullName: "acme-labs/playground", IsPrivate: true, UpdatedOn: "2026-07-30T16:40:00+00:00"},
	}

	s.addFile("acme", "billing-api", "README.md", "# billing-api\n\nBilling service for Acme.\n")
	s.addFile("acme", "billing-api", "src/main.py", "def main():\n    print(\"billing\")\n")
	s.addFile("acme", "billing-api", "src/handlers/invoices.py", "def list_invoices():\n    return []\n")
	s.addFile("acme", "billing-api", "src/handlers/payments.py", "def charge(amount):\n    return amount\n")
	s.addFile("acme", "billing-api", "config/settings.yaml", "debug: false\nport: 8080\n")
	s.addFile("acme", "billing-api", "assets/logo.png", "\x89PNG\r\n\x1a\n(binary)")

	s.addFile("acme", "user-service", "README.md", "# user-service\n")
	s.addFile("acme", "user-service", "main.go", "package main\n\nfunc main() {}\n")
	s.addFile("acme", "user-service", "internal/store/store.go", "package store\n")

	s.addFile("acme-labs", "playground", "notes.txt", "scratch space\n")
}
