package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/config"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/store"
)

var (
	addrFlag string
	jsonFlag bool
)

func main() {
	root := &cobra.Command{
		Use:           "literasictl",
		Short:         "Operator CLI for the literasi daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addrFlag, "addr", config.DefaultListenAddr, "daemon listen address")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")

	root.AddCommand(
		statusCmd(),
		loginCmd(),
		logoutCmd(),
		usersCmd(),
		settingsCmd(),
		contentCmd(),
		liveCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon health and the current session",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newClient(addrFlag)
			if err != nil {
				return err
			}
			var health struct {
				Status string `json:"status"`
			}
			if err := c.do("GET", "/healthz", nil, &health); err != nil {
				return err
			}

			var sess struct {
				Type string      `json:"type"`
				User *store.User `json:"user"`
			}
			sessErr := c.do("GET", "/api/v1/session", nil, &sess)

			if jsonFlag {
				out := map[string]any{"daemon": health.Status}
				if sessErr == nil {
					out["session"] = sess
				}
				return printJSON(out)
			}
			fmt.Printf("daemon: %s (%s)\n", health.Status, addrFlag)
			switch {
			case sessErr != nil:
				fmt.Println("session: logged out")
			case sess.User != nil:
				fmt.Printf("session: user %s (%s)\n", sess.User.Username, sess.User.NamaLengkap)
			default:
				fmt.Printf("session: %s\n", sess.Type)
			}
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Authenticate against the daemon and store the token",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := newClient(addrFlag)
			if err != nil {
				return err
			}
			var resp struct {
				Token string      `json:"token"`
				Type  string      `json:"type"`
				User  *store.User `json:"user"`
			}
			body := map[string]string{"username": args[0], "password": args[1]}
			if err := c.do("POST", "/api/v1/login", body, &resp); err != nil {
				return err
			}
			if err := c.saveToken(resp.Token); err != nil {
				return err
			}
			fmt.Printf("logged in as %s\n", resp.Type)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newClient(addrFlag)
			if err != nil {
				return err
			}
			// Best effort server-side; the local token is cleared regardless.
			_ = c.do("POST", "/api/v1/logout", nil, nil)
			if err := c.clearToken(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage member accounts (admin)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all member accounts",
			RunE: func(_ *cobra.Command, _ []string) error {
				c, err := newClient(addrFlag)
				if err != nil {
					return err
				}
				var users []store.User
				if err := c.do("GET", "/api/v1/users", nil, &users); err != nil {
					return err
				}
				if jsonFlag {
					return printJSON(users)
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUSERNAME\tNAMA\tSTATUS AKUN")
				for _, u := range users {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.NamaLengkap, u.AkunStatus)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "approve <id>",
			Short: "Activate a pending registration",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid user id %q", args[0])
				}
				c, err := newClient(addrFlag)
				if err != nil {
					return err
				}
				var u store.User
				if err := c.do("POST", fmt.Sprintf("/api/v1/users/%d/approve", id), nil, &u); err != nil {
					return err
				}
				fmt.Printf("approved %s (%s)\n", u.Username, u.NamaLengkap)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a member account",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid user id %q", args[0])
				}
				c, err := newClient(addrFlag)
				if err != nil {
					return err
				}
				if err := c.do("DELETE", fmt.Sprintf("/api/v1/users/%d", id), nil, nil); err != nil {
					return err
				}
				fmt.Println("deleted")
				return nil
			},
		},
	)
	return cmd
}

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change library settings",
	}

	var (
		nama     string
		password string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update library settings (admin)",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newClient(addrFlag)
			if err != nil {
				return err
			}
			var cur store.Settings
			if err := c.do("GET", "/api/v1/settings", nil, &cur); err != nil {
				return err
			}
			if nama != "" {
				cur.NamaPerpustakaan = nama
			}
			cur.AdminPassword = password // empty means keep current
			var saved store.Settings
			if err := c.do("PUT", "/api/v1/settings", cur, &saved); err != nil {
				return err
			}
			fmt.Printf("saved, revision %d\n", saved.Revisi)
			return nil
		},
	}
	set.Flags().StringVar(&nama, "nama", "", "library display name")
	set.Flags().StringVar(&password, "admin-password", "", "rotate the admin password")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Show the effective settings",
			RunE: func(_ *cobra.Command, _ []string) error {
				c, err := newClient(addrFlag)
				if err != nil {
					return err
				}
				var s store.Settings
				if err := c.do("GET", "/api/v1/settings", nil, &s); err != nil {
					return err
				}
				if jsonFlag {
					return printJSON(s)
				}
				fmt.Printf("nama: %s\nrevision: %d\n", s.NamaPerpustakaan, s.Revisi)
				return nil
			},
		},
		set,
	)
	return cmd
}

func contentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Browse published content",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list <kind>",
		Short: "List items of a content collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			kind := store.Kind(args[0])
			if !kind.Valid() {
				return fmt.Errorf("unknown content kind %q (known: %v)", args[0], store.Kinds)
			}
			c, err := newClient(addrFlag)
			if err != nil {
				return err
			}
			var items []store.ContentItem
			if err := c.do("GET", "/api/v1/content/"+args[0], nil, &items); err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(items)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tJUDUL\tPENULIS\tKATEGORI")
			for _, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", it.ID, it.Judul, it.Penulis, it.Kategori)
			}
			return w.Flush()
		},
	})
	return cmd
}

func liveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Show the live-stream record",
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := newClient(addrFlag)
			if err != nil {
				return err
			}
			var ls store.LiveStream
			if err := c.do("GET", "/api/v1/live", nil, &ls); err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(ls)
			}
			if !ls.Aktif {
				fmt.Println("no active live stream")
				return nil
			}
			fmt.Printf("%s\n%s\n", ls.Judul, ls.URL)
			return nil
		},
	}
}
