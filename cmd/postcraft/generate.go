package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/postcraft/internal/gallery"
	"github.com/thinkscotty/postcraft/internal/models"
	"github.com/thinkscotty/postcraft/internal/server"
)

var errUnparsed = errors.New("model reply could not be parsed as JSON")

const minTopicLength = 3

// checkTopic applies the form rules for a topic before anything is sent
// upstream. The HTTP route only requires a non-empty topic.
func checkTopic(topic string) error {
	topic = strings.TrimSpace(topic)
	switch {
	case topic == "":
		return errors.New("topic is required")
	case utf8.RuneCountInString(topic) < minTopicLength:
		return fmt.Errorf("topic must be at least %d characters", minTopicLength)
	}
	return nil
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		req    models.GenerationRequest
		save   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one content package",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkTopic(req.Topic); err != nil {
				return err
			}

			res, err := a.aiClient().Generate(cmd.Context(), req)
			out := cmd.OutOrStdout()

			if asJSON {
				_, body := server.ResponseBody(res, err)
				fmt.Fprintln(out, string(body))
				if err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			if !res.Outcome.OK {
				if !asJSON {
					fmt.Fprintf(out, "Model %s returned:\n%s\n", res.Model, res.Outcome.Raw)
				}
				return errUnparsed
			}

			pkg, err := res.Outcome.Package()
			if err != nil {
				return err
			}
			if !asJSON {
				fmt.Fprintf(out, "Model: %s (%s)\n\n", res.Model, res.Selection.Source)
				renderPackage(out, pkg)
			}
			if save {
				return a.save(cmd.ErrOrStderr(), models.NewContentPackage(req, pkg, time.Now()))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Topic, "topic", "", "Post topic")
	f.StringVar(&req.Tone, "tone", "Professional", "Tone of voice")
	f.StringVar(&req.Platform, "platform", "LinkedIn", "Target platform")
	f.StringVar(&req.BrandKeywords, "brand-keywords", "", "Comma separated brand keywords")
	f.BoolVar(&save, "save", false, "Save the package to the local gallery")
	f.BoolVar(&asJSON, "json", false, "Print the JSON body the HTTP route would return")
	cmd.MarkFlagRequired("topic")
	return cmd
}

func (a *app) save(w io.Writer, pkg models.ContentPackage) error {
	return a.withGallery(func(g *gallery.Gallery) error {
		saved, err := g.Add(pkg)
		if err != nil {
			return err
		}
		slog.Debug("Saved package", "id", saved.ID, "path", a.cfg.Storage.Path)
		fmt.Fprintf(w, "Saved as %s\n", saved.ID)
		return nil
	})
}

func renderPackage(w io.Writer, pkg models.GeneratedPackage) {
	fmt.Fprintf(w, "%s\n", pkg.MainPost)

	if len(pkg.Variants) > 0 {
		fmt.Fprintln(w, "\nVariants:")
		for i, v := range pkg.Variants {
			fmt.Fprintf(w, "  %d. %s\n", i+1, v)
		}
	}
	if len(pkg.Hashtags) > 0 {
		fmt.Fprintf(w, "\nHashtags: %s\n", strings.Join(pkg.Hashtags, " "))
	}
	if pkg.ImagePrompt != "" {
		fmt.Fprintf(w, "\nImage prompt: %s\n", pkg.ImagePrompt)
	}
}
