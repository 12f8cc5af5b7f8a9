package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
	"github.com/buildbot-tools/bbinfo/internal/digest"
	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
	"github.com/buildbot-tools/bbinfo/internal/render"
	"github.com/buildbot-tools/bbinfo/pkg/cmd/factory"
)

const (
	defaultListenAddr = ":8010"
	shutdownTimeout   = 5 * time.Second
)

func NewCmdServe(f *factory.Factory) *cobra.Command {
	var listenAddr string

	cmd := cobra.Command{
		Use:   "serve [flags]",
		Args:  cobra.NoArgs,
		Short: "Serve build reports over HTTP",
		Long: heredoc.Doc(`
			Serve the reports build list produces over HTTP, one selection per
			request. Criteria come from query parameters:

			    pattern        builder glob, repeatable
			    since-minutes  only builds completed within the past N minutes
			    max-builds     how many builds per builder
			    status         required status, repeatable
			    format         text, html or json (default html)
		`),
		Example: heredoc.Doc(`
			# Listen on the default address
			$ bbinfo serve

			# Narrow the listen address
			$ bbinfo serve --listen 127.0.0.1:8080

			# The failing Windows builders, as JSON
			$ curl 'http://localhost:8010/?pattern=*Windows*&status=failure&format=json'
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			master, err := f.Master()
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:        listenAddr,
				Handler:     NewHandler(master, master.MasterURL(), f.Config.RepoURL()),
				BaseContext: func(net.Listener) context.Context { return cmd.Context() },
			}

			errCh := make(chan error, 1)
			go func() { errCh <- server.ListenAndServe() }()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving reports for %s on %s\n", master.MasterURL(), listenAddr)

			select {
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", defaultListenAddr, "Address to listen on")

	return &cmd
}

type reportHandler struct {
	source    digest.Source
	masterURL string
	repoURL   string
}

// NewHandler answers report requests for one master. Invalid criteria are
// the client's fault (400), a master that cannot be read is upstream trouble
// (502).
func NewHandler(src digest.Source, masterURL, repoURL string) http.Handler {
	return &reportHandler{source: src, masterURL: masterURL, repoURL: repoURL}
}

func (h *reportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	criteria, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, bbErrors.MessageForError(err), http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	renderer, err := render.ByFormat(format)
	if err != nil {
		http.Error(w, bbErrors.MessageForError(err), http.StatusBadRequest)
		return
	}

	rows, err := digest.Collect(r.Context(), h.source, criteria, digest.DefaultParallelism)
	if err != nil {
		http.Error(w, bbErrors.MessageForError(err), http.StatusBadGateway)
		return
	}

	report := &render.Report{
		Master:      h.masterURL,
		RepoURL:     h.repoURL,
		GeneratedAt: time.Now(),
		Rows:        rows,
	}

	// Render to a buffer first so a rendering failure can still change the
	// status code.
	var buf bytes.Buffer
	if err := renderer.Render(&buf, report); err != nil {
		http.Error(w, bbErrors.MessageForError(err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(buf.Bytes())
}

func criteriaFromQuery(query url.Values) (digest.Criteria, error) {
	criteria := digest.Criteria{
		Patterns:  query["pattern"],
		MaxBuilds: digest.DefaultMaxBuilds,
	}

	if v := query.Get("since-minutes"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return digest.Criteria{}, bbErrors.NewInvalidCriteriaError(err,
				fmt.Sprintf("since-minutes is not a number: %q", v))
		}
		criteria.SinceMinutes = minutes
	}

	if v := query.Get("max-builds"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return digest.Criteria{}, bbErrors.NewInvalidCriteriaError(err,
				fmt.Sprintf("max-builds is not a number: %q", v))
		}
		criteria.MaxBuilds = n
	}

	for _, status := range query["status"] {
		criteria.Statuses = append(criteria.Statuses, buildbot.Status(status))
	}

	if err := criteria.Validate(); err != nil {
		return digest.Criteria{}, err
	}
	return criteria, nil
}
