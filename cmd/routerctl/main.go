// routerctl is the operator CLI of a router node: it computes account
// addresses, encodes and decodes instruction payloads, mints admin API keys
// and reads the audit log of a relayed message.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cyphera/remote-accounts/internal/client/relay"
	"github.com/cyphera/remote-accounts/internal/codec"
	"github.com/cyphera/remote-accounts/internal/factory"
	"github.com/cyphera/remote-accounts/internal/helpers"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/pflag"
)

const usage = `Usage: routerctl <command> [flags]

Commands:
  address   --factory <addr> --principal <chain:account>
  encode    [--file instructions.json]   JSON instructions to a hex payload
  decode    <hex payload>                hex payload to JSON instructions
  hash-key  [--key <key>]                bcrypt hash for ADMIN_API_KEY_HASH
  results   --url <node> --message <id>  audit records of a message
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stdout, usage)
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "address":
		return runAddress(rest, stdout)
	case "encode":
		return runEncode(rest, stdin, stdout)
	case "decode":
		return runDecode(rest, stdout)
	case "hash-key":
		return runHashKey(rest, stdout)
	case "results":
		return runResults(rest, stdout)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

func runAddress(args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("address", pflag.ContinueOnError)
	factoryFlag := flagSet.String("factory", "", "account factory address")
	principalFlag := flagSet.String("principal", "", "principal as chain:account")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if !common.IsHexAddress(*factoryFlag) {
		return fmt.Errorf("invalid --factory %q", *factoryFlag)
	}
	p, err := principal.Parse(*principalFlag)
	if err != nil {
		return fmt.Errorf("invalid --principal: %w", err)
	}
	fmt.Fprintln(stdout, factory.AddressFor(common.HexToAddress(*factoryFlag), p).Hex())
	return nil
}

func runEncode(args []string, stdin io.Reader, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	file := flagSet.String("file", "", "JSON file with one instruction or a list (default stdin)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	in := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	var instructions []codec.Instruction
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "{") {
		var single codec.Instruction
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("invalid instruction: %w", err)
		}
		instructions = append(instructions, single)
	} else if err := json.Unmarshal(data, &instructions); err != nil {
		return fmt.Errorf("invalid instructions: %w", err)
	}

	var payload []byte
	switch len(instructions) {
	case 0:
		return errors.New("no instructions given")
	case 1:
		payload, err = codec.Encode(instructions[0])
	default:
		payload, err = codec.EncodeBatch(instructions...)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hexutil.Encode(payload))
	return nil
}

func runDecode(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("decode takes exactly one hex payload")
	}
	payload, err := hexutil.Decode(args[0])
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	instructions, err := codec.Decode(payload)
	if err != nil {
		return err
	}
	return writeJSON(stdout, instructions)
}

func runHashKey(args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("hash-key", pflag.ContinueOnError)
	key := flagSet.String("key", "", "existing key to hash (a new one is generated when empty)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		generated, err := helpers.GenerateAPIKey()
		if err != nil {
			return err
		}
		*key = generated
		fmt.Fprintf(stdout, "key:  %s\n", generated)
	}
	hash, err := helpers.HashAPIKey(*key)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "hash: %s\n", hash)
	return nil
}

func runResults(args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("results", pflag.ContinueOnError)
	url := flagSet.String("url", "http://localhost:8000", "router node base URL")
	message := flagSet.String("message", "", "bridge message id")
	timeout := flagSet.Duration("timeout", 10*time.Second, "request timeout")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *message == "" {
		return errors.New("--message is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	records, err := relay.New(*url).Results(ctx, *message)
	if err != nil {
		return err
	}
	return writeJSON(stdout, records)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
