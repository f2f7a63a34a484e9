package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:8000/api"

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func step(name string) {
	color.Cyan("\n=== %s ===", name)
}

func check(resp *http.Response, body []byte, err error) {
	if err != nil {
		color.Red("FAIL: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("FAIL: status %d", resp.StatusCode)
		prettyPrint(body)
		os.Exit(1)
	}
	color.Green("OK: status %d", resp.StatusCode)
	prettyPrint(body)
}

func main() {
	step("Knowledge base status")
	resp, body, err := sendRequest("GET", "/knowledge/v1/status", nil)
	check(resp, body, err)

	step("Create document")
	resp, body, err = sendRequest("POST", "/knowledge/v1", map[string]string{
		"title":   "Pricing overview",
		"source":  "pricing.md",
		"content": "Our starter plan is $49/month. The pro plan is $199/month and includes priority support.",
	})
	check(resp, body, err)

	var created struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.Data.Id == "" {
		color.Red("FAIL: could not read created document id")
		os.Exit(1)
	}

	step("Show document")
	resp, body, err = sendRequest("GET", "/knowledge/v1/"+created.Data.Id, nil)
	check(resp, body, err)

	step("List documents")
	resp, body, err = sendRequest("GET", "/knowledge/v1", nil)
	check(resp, body, err)

	step("Delete document")
	resp, body, err = sendRequest("DELETE", "/knowledge/v1/"+created.Data.Id, nil)
	check(resp, body, err)

	step("List leads")
	resp, body, err = sendRequest("GET", "/lead/v1", nil)
	check(resp, body, err)

	color.Green("\nAll checks passed")
}
