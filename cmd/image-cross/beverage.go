package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-cross/internal/catalog"
	"github.com/ironsheep/image-cross/internal/config"
)

// requestTimeout bounds a single call to a running server.
const requestTimeout = 5 * time.Second

// NewBeverageCmd creates the beverage command group.
func NewBeverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beverage",
		Short: "Manage the beverage catalog of a running server",
	}
	cmd.PersistentFlags().String("server", "http://"+config.DefaultAddr, "Base URL of the running server")

	cmd.AddCommand(newBeverageAddCmd())
	return cmd
}

func newBeverageAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [<id> <name> <manufacturer> <type> <volume> <price> <stock>]",
		Short: "Add a beverage",
		Long: `Add posts a new beverage to a running server. Without arguments the fields
are read interactively from stdin.

Examples:
  image-cross beverage add 5 Lemonade Fanta Carbonated 330 75 100
  image-cross beverage add --server http://127.0.0.1:8080`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 7 {
				return fmt.Errorf("expected 7 arguments or none, got %d", len(args))
			}
			return nil
		},
		RunE: runBeverageAddCmd,
	}
}

func runBeverageAddCmd(cmd *cobra.Command, args []string) error {
	baseURL, err := cmd.Flags().GetString("server")
	if err != nil {
		return err
	}

	var b catalog.Beverage
	if len(args) == 0 {
		b, err = promptBeverage(cmd.InOrStdin(), cmd.OutOrStdout())
	} else {
		b, err = parseBeverage(args)
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	created, err := postBeverage(ctx, http.DefaultClient, baseURL, b)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(created)
}

// parseBeverage builds a beverage from the seven positional fields.
func parseBeverage(fields []string) (catalog.Beverage, error) {
	if len(fields) != 7 {
		return catalog.Beverage{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}
	volume, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return catalog.Beverage{}, fmt.Errorf("volume must be a number: %q", fields[4])
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
	if err != nil {
		return catalog.Beverage{}, fmt.Errorf("price must be a number: %q", fields[5])
	}
	stock, err := strconv.Atoi(strings.TrimSpace(fields[6]))
	if err != nil {
		return catalog.Beverage{}, fmt.Errorf("stock must be an integer: %q", fields[6])
	}
	b := catalog.Beverage{
		ID:           strings.TrimSpace(fields[0]),
		Name:         strings.TrimSpace(fields[1]),
		Manufacturer: strings.TrimSpace(fields[2]),
		Type:         strings.TrimSpace(fields[3]),
		Volume:       volume,
		Price:        price,
		Stock:        stock,
	}
	return b, b.Validate()
}

func promptBeverage(in io.Reader, out io.Writer) (catalog.Beverage, error) {
	prompts := []string{
		"ID (unique)",
		"Name",
		"Manufacturer",
		"Type (Carbonated/Juice/Water/Energy)",
		"Volume in ml (e.g. 500)",
		"Price (e.g. 89)",
		"Stock (whole number)",
	}
	scanner := bufio.NewScanner(in)
	fields := make([]string, 0, len(prompts))
	for _, p := range prompts {
		fmt.Fprintf(out, "%s: ", p)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return catalog.Beverage{}, err
			}
			return catalog.Beverage{}, io.ErrUnexpectedEOF
		}
		fields = append(fields, scanner.Text())
	}
	return parseBeverage(fields)
}

// postBeverage creates b on the server at baseURL and returns the stored
// beverage.
func postBeverage(ctx context.Context, client *http.Client, baseURL string, b catalog.Beverage) (catalog.Beverage, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return catalog.Beverage{}, err
	}
	url := strings.TrimRight(baseURL, "/") + "/beverages/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return catalog.Beverage{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return catalog.Beverage{}, fmt.Errorf("failed to reach server at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return catalog.Beverage{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return catalog.Beverage{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var created catalog.Beverage
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return catalog.Beverage{}, errors.Join(errors.New("invalid server response"), err)
	}
	return created, nil
}
