package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func baseURL() string {
	if v := os.Getenv("FLOWALIGN_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

type step struct {
	name    string
	method  string
	path    string
	payload any
	want    int
}

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	suffix := fmt.Sprintf("%d", time.Now().Unix())
	collection := "smoke-calls-" + suffix
	project := "smoke-bot-" + suffix

	flow := func(transcriptID string) map[string]any {
		return map[string]any{
			"transcript_id": transcriptID,
			"nodes": []map[string]any{
				{"id": "n1", "type": "question", "label": "Verify Caller Identity", "content": "request account number"},
				{"id": "n2", "type": "tool", "label": "Look Up Order", "content": "search order by number"},
			},
			"connections": []map[string]any{
				{"from": "n1", "to": "n2", "reason": "identity confirmed"},
			},
		}
	}

	steps := []step{
		{"Ingest transcript 1", "POST", "/collections/" + collection + "/transcripts", flow("t1"), http.StatusCreated},
		{"Ingest transcript 2", "POST", "/collections/" + collection + "/transcripts", flow("t2"), http.StatusCreated},
		{"Put prompt nodes", "PUT", "/projects/" + project + "/prompt-nodes", map[string]any{
			"nodes": []map[string]any{
				{"id": "p1", "type": "question", "label": "Verify Identity", "content": "ask for the account number"},
				{"id": "p2", "type": "tool", "label": "Issue Refund", "content": "refund the order"},
			},
		}, http.StatusOK},
		{"Dry run alignment", "POST", "/projects/" + project + "/collections/" + collection + "/alignment?persist=false", nil, http.StatusOK},
		{"Run alignment", "POST", "/projects/" + project + "/collections/" + collection + "/alignment", nil, http.StatusOK},
		{"Read alignments", "GET", "/projects/" + project + "/collections/" + collection + "/alignment", nil, http.StatusOK},
		{"Read canonical graph", "GET", "/collections/" + collection + "/canonical", nil, http.StatusOK},
		{"Rebuild canonical graph", "POST", "/collections/" + collection + "/canonical/rebuild", nil, http.StatusOK},
		{"Phases", "GET", "/collections/" + collection + "/phases", nil, http.StatusOK},
	}

	for i, s := range steps {
		fmt.Printf("%d. %s...\n", i+1, s.name)
		if !sendRequest(s.method, s.path, s.payload, s.want) {
			fmt.Printf("FAILED: %s\n", s.name)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", s.name)
	}
}

func sendRequest(method, endpoint string, payload any, want int) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error encoding payload: %v\n", err)
			return false
		}
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL()+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", string(respBody))
	return true
}
