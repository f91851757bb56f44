package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	var baseURL string

	root := &cobra.Command{
		Use:   "screen2deckctl",
		Short: "Talks to a running screen2deckd daemon",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "base URL of the screen2deckd daemon")

	root.AddCommand(submitCmd(&baseURL), statusCmd(&baseURL), exportCmd(&baseURL), waitCmd(&baseURL))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func submitCmd(baseURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <image>",
		Short: "Upload a decklist screenshot and print the assigned job ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := submitImage(*baseURL, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("job_id=%s cached=%v\n", result.JobID, result.Cached)
			return nil
		},
	}
}

func statusCmd(baseURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Print a job's current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := getJSON(*baseURL + "/jobs/" + args[0])
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("status %d: %s", status, body)
			}
			fmt.Println(string(body))
			return nil
		},
	}
}

func exportCmd(baseURL *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <job-id>",
		Short: "Print the exported decklist for a completed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := getJSON(*baseURL + "/jobs/" + args[0] + "/export?format=" + format)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("status %d: %s", status, body)
			}
			fmt.Println(string(body))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "M", "export format: M, X, K, or T")
	return cmd
}

func waitCmd(baseURL *string) *cobra.Command {
	var format string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "wait <image>",
		Short: "Submit an image and poll until the job reaches a terminal state, then export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := submitImage(*baseURL, args[0])
			if err != nil {
				return err
			}

			deadline := time.Now().Add(timeout)
			for {
				body, status, err := getJSON(*baseURL + "/jobs/" + result.JobID)
				if err != nil {
					return err
				}
				if status != http.StatusOK {
					return fmt.Errorf("status %d: %s", status, body)
				}
				var j struct {
					State string `json:"State"`
				}
				if err := json.Unmarshal(body, &j); err != nil {
					return fmt.Errorf("decode job status: %w", err)
				}
				switch j.State {
				case "completed":
					exportBody, status, err := getJSON(*baseURL + "/jobs/" + result.JobID + "/export?format=" + format)
					if err != nil {
						return err
					}
					if status != http.StatusOK {
						return fmt.Errorf("export status %d: %s", status, exportBody)
					}
					fmt.Println(string(exportBody))
					return nil
				case "failed":
					return fmt.Errorf("job %s failed: %s", result.JobID, body)
				}
				if time.Now().After(deadline) {
					return fmt.Errorf("job %s did not complete within %s", result.JobID, timeout)
				}
				time.Sleep(500 * time.Millisecond)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "M", "export format: M, X, K, or T")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to poll before giving up")
	return cmd
}

type submitResult struct {
	JobID  string `json:"job_id"`
	Cached bool   `json:"cached"`
}

func submitImage(baseURL, path string) (submitResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return submitResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return submitResult{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return submitResult{}, err
	}
	if err := w.Close(); err != nil {
		return submitResult{}, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/jobs", &buf)
	if err != nil {
		return submitResult{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return submitResult{}, fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return submitResult{}, err
	}
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return submitResult{}, fmt.Errorf("submit status %d: %s", resp.StatusCode, body)
	}

	var result submitResult
	if err := json.Unmarshal(body, &result); err != nil {
		return submitResult{}, fmt.Errorf("decode submit response: %w", err)
	}
	return result, nil
}

func getJSON(url string) ([]byte, int, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
