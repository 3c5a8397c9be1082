package client

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	auction "github.com/dfarias/goauction"
	"github.com/dfarias/goauction/pkg/transport"
)

type command struct {
	name    string
	aliases []string
	usage   string
	handle  func(c *Client, args []string) error
}

var commands = []command{
	{"login", nil, "login UID password", cmdLogin},
	{"logout", nil, "logout", cmdLogout},
	{"unregister", nil, "unregister", cmdUnregister},
	{"exit", nil, "exit", cmdExit},
	{"open", nil, "open name asset_fname start_value timeactive", cmdOpen},
	{"close", nil, "close AID", cmdClose},
	{"myauctions", []string{"ma"}, "myauctions", cmdMyAuctions},
	{"mybids", []string{"mb"}, "mybids", cmdMyBids},
	{"list", []string{"l"}, "list", cmdList},
	{"show_asset", []string{"sa"}, "show_asset AID", cmdShowAsset},
	{"bid", []string{"b"}, "bid AID value", cmdBid},
	{"show_record", []string{"sr"}, "show_record AID", cmdShowRecord},
}

func lookup(name string) *command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
		for _, alias := range commands[i].aliases {
			if alias == name {
				return &commands[i]
			}
		}
	}
	return nil
}

// Execute parses and runs one prompt line.
func (c *Client) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd := lookup(fields[0])
	if cmd == nil {
		return ErrUnknownCommand
	}
	return cmd.handle(c, fields[1:])
}

// Run is the interactive loop. Every failure renders as a single line and
// control returns to the prompt.
func (c *Client) Run() error {
	scanner := bufio.NewScanner(os.Stdin)
	for !c.toExit {
		fmt.Print(c.Prompt())
		if !scanner.Scan() {
			break
		}
		if err := c.Execute(scanner.Text()); err != nil {
			fmt.Println(renderError(err))
		}
	}
	return scanner.Err()
}

func renderError(err error) string {
	switch {
	case err == ErrUnknownCommand:
		return "Unknown command."
	case err == transport.ErrTimeout:
		return "No reply from the server within the time limit."
	case err == auction.ErrProtocolMessage:
		return "The server reported a protocol message error."
	case err == auction.ErrProtocolViolation:
		return "There was a protocol error while communicating with the server."
	default:
		return err.Error()
	}
}

func cmdLogin(c *Client, args []string) error {
	if len(args) != 2 || !auction.ValidUID(args[0]) || !auction.ValidPassword(args[1]) {
		return &ArgumentError{Usage: "login UID password"}
	}
	if c.user.IsLoggedIn() {
		fmt.Println("A user is already logged in. Logout first.")
		return nil
	}
	comm := &auction.Login{UID: args[0], Password: args[1]}
	if err := c.Do(comm); err != nil {
		return err
	}
	switch comm.Status {
	case auction.StatusOK:
		fmt.Println("Login successful.")
		c.user.LogIn(comm.UID, comm.Password)
	case auction.StatusREG:
		fmt.Println("New user registered and logged in.")
		c.user.LogIn(comm.UID, comm.Password)
	case auction.StatusNOK:
		fmt.Println("Incorrect user ID or password.")
	}
	return nil
}

func cmdLogout(c *Client, args []string) error {
	if len(args) != 0 {
		return &ArgumentError{Usage: "logout"}
	}
	if !c.user.IsLoggedIn() {
		fmt.Println("No user is logged in.")
		return nil
	}
	comm := &auction.Logout{UID: c.user.UID(), Password: c.user.Password()}
	if err := c.Do(comm); err != nil {
		return err
	}
	switch comm.Status {
	case auction.StatusOK:
		fmt.Println("Logout successful.")
		c.user.LogOut()
	case auction.StatusNOK:
		fmt.Println("No user is logged in.")
	case auction.StatusUNR:
		fmt.Println("User is not registered.")
	}
	return nil
}

func cmdUnregister(c *Client, args []string) error {
	if len(args) != 0 {
		return &ArgumentError{Usage: "unregister"}
	}
	if !c.user.IsLoggedIn() {
		fmt.Println("No user is logged in.")
		return nil
	}
	comm := &auction.Unregister{UID: c.user.UID(), Password: c.user.Password()}
	if err := c.Do(comm); err != nil {
		return err
	}
	switch comm.Status {
	case auction.StatusOK:
		fmt.Println("User unregistered.")
		c.user.LogOut()
	case auction.StatusNOK:
		fmt.Println("No user is logged in.")
	case auction.StatusUNR:
		fmt.Println("User is not registered.")
	}
	return nil
}

func cmdExit(c *Client, args []string) error {
	if len(args) != 0 {
		return &ArgumentError{Usage: "exit"}
	}
	if c.user.IsLoggedIn() {
		fmt.Println("A user is still logged in. Logout first.")
		return nil
	}
	c.toExit = true
	return nil
}

func cmdOpen(c *Client, args []string) error {
	if len(args) != 4 {
		return &ArgumentError{Usage: "open name asset_fname start_value timeactive"}
	}
	name, fname, startValue, timeActive := args[0], args[1], args[2], args[3]
	if !auction.ValidAuctionName(name) || !auction.ValidFileName(fname) ||
		len(startValue) > auction.MaxStartValueSize || len(timeActive) > auction.MaxDurationSize {
		return &ArgumentError{Usage: "open name asset_fname start_value timeactive"}
	}
	value, err := strconv.Atoi(startValue)
	if err != nil {
		return &ArgumentError{Usage: "open name asset_fname start_value timeactive"}
	}
	duration, err := strconv.Atoi(timeActive)
	if err != nil {
		return &ArgumentError{Usage: "open name asset_fname start_value timeactive"}
	}
	if !c.user.IsLoggedIn() {
		fmt.Println("No user is logged in.")
		return nil
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("could not read asset file %s: %w", fname, err)
	}
	if len(data) > auction.MaxFileSize {
		fmt.Println("Asset file is too big.")
		return nil
	}
	comm := &auction.OpenAuction{
		UID:        c.user.UID(),
		Password:   c.user.Password(),
		Name:       name,
		StartValue: value,
		Duration:   duration,
		FileName:   filepath.Base(fname),
		FileSize:   len(data),
		FileData:   data,
	}
	if err := c.Do(comm); err != nil {
		return err
	}
	switch comm.Status {
	case auction.StatusOK:
		fmt.Printf("Auction %s created.\n", comm.AID)
	case auction.StatusNOK:
		fmt.Println("Auction could not be created.")
	case auction.StatusNLG:
		fmt.Println("No user is logged in.")
	}
	return nil
}

func cmdClose(c *Client, args []string) error {
	if len(args) != 1 || !auction.ValidAID(args[0]) {
		return &ArgumentError{Usage: "close AID"}
	}
	if !c.user.IsLoggedIn() {
		fmt.Println("No user is logged in.")
		return nil
	}
	comm := &auction.CloseAuction{UID: c.user.UID(), Password: c.user.Password(), AID: args[0]}
	if err := c.Do(comm); err != nil {
		return err
	}
	switch comm.Status {
	case auction.StatusOK:
		fmt.Printf("Auction %s closed.\n", comm.AID)
	case auction.StatusNLG:
		fmt.Println("No user is logged in.")
	case auction.StatusEAU:
		fmt.Println("Auction does not exist.")
	case auction.StatusEOW:
		fmt.Println("Only the host may close this auction.")
	case auction.StatusEND:
		fmt.Println("Auction has already ended.")
	}
	return nil
}

func printListing(entries []auction.AuctionState) {
	for _, entry := range entries {
		state := "ended"
		if entry.Active {
			state = "active"
		}
		fmt.Printf("  %s  %s\n", entry.AID, state)
	}
}

func cmdMyAuctions(c *Client, args []string) error {
	if len(args) != 0 {
		return &ArgumentError{Usage: "myauctions"}
	}
	if !c.user.IsLoggedIn() {
		fmt.Println("No user is logged in.")
		return nil
	}
	comm := &auction.ListUserAuctions{UID: c.user.UID()}
	if err := c.Do(comm); err != nil {
		return err
	}
	switch comm.Status {
	case auction.StatusOK:
		fmt.Println("Your auctions:")
		printListing(comm.Auctions)
	case auction.StatusNOK:
		fmt.Println("You host no auctions.")
	case auction.StatusNLG:
		fmt.Println("No user is logged in.")
	}
	return nil
}

func cmdMyBids(c *Client, args []string) error {
	if len(args) != 0 {
		return &ArgumentError{Usage: "mybids"}
	}
	if !c.user.IsLoggedIn() {
		fmt.Println("No user is logged in.")
		return nil
	}
	comm := &auction.ListUserBids{UID: c.user.UID()}
	if err := c.Do(comm); err != nil {
		return err
	}
	switch comm.Status {
	case auction.StatusOK:
		fmt.Println("Auctions you bid on:")
		printListing(comm.Auctions)
	case auction.StatusNOK:
		fmt.Println("You have no bids.")
	case auction.StatusNLG:
		fmt.Println("No user is logged in.")
	}
	return nil
}

func cmdList(c *Client, args []string) error {
	if len(args) != 0 {
		return &ArgumentError{Usage: "list"}
	}
	comm := &auction.ListAllAuctions{}
	if err := c.Do(comm); err != nil {
		return err
	}
	switch comm.Status {
	case auction.StatusOK:
		fmt.Println("Auctions:")
		printListing(comm.Auctions)
	case auction.StatusNOK:
		fmt.Println("No auctions exist yet.")
	}
	return nil
}

func cmdShowAsset(c *Client, args []string) error {
	if len(args) != 1 || !auction.ValidAID(args[0]) {
		return &ArgumentError{Usage: "show_asset AID"}
	}
	comm := &auction.ShowAsset{AID: args[0]}
	if err := c.Do(comm); err != nil {
		return err
	}
	if comm.Status != auction.StatusOK {
		fmt.Println("Auction has no asset available.")
		return nil
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return err
	}
	target := filepath.Join(downloadDir, comm.FileName)
	if err := os.WriteFile(target, comm.FileData, 0o644); err != nil {
		return err
	}
	fmt.Printf("Downloaded %s (%d bytes) to %s.\n", comm.FileName, comm.FileSize, target)
	return nil
}

func cmdBid(c *Client, args []string) error {
	if len(args) != 2 || !auction.ValidAID(args[0]) || len(args[1]) > auction.MaxStartValueSize {
		return &ArgumentError{Usage: "bid AID value"}
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return &ArgumentError{Usage: "bid AID value"}
	}
	if !c.user.IsLoggedIn() {
		fmt.Println("No user is logged in.")
		return nil
	}
	comm := &auction.Bid{UID: c.user.UID(), Password: c.user.Password(), AID: args[0], Value: value}
	if err := c.Do(comm); err != nil {
		return err
	}
	switch comm.Status {
	case auction.StatusACC:
		fmt.Println("Bid accepted.")
	case auction.StatusREF:
		fmt.Println("Bid refused: value does not top the highest bid or the start value.")
	case auction.StatusILG:
		fmt.Println("You cannot bid on your own auction.")
	case auction.StatusNOK:
		fmt.Println("Auction does not exist or has ended.")
	case auction.StatusNLG:
		fmt.Println("No user is logged in.")
	}
	return nil
}

func cmdShowRecord(c *Client, args []string) error {
	if len(args) != 1 || !auction.ValidAID(args[0]) {
		return &ArgumentError{Usage: "show_record AID"}
	}
	comm := &auction.ShowRecord{AID: args[0]}
	if err := c.Do(comm); err != nil {
		return err
	}
	if comm.Status != auction.StatusOK {
		fmt.Println("Auction does not exist.")
		return nil
	}
	fmt.Printf("Auction %s: %s hosted by %s\n", comm.AID, comm.Name, comm.Host)
	fmt.Printf("  asset %s, start value %d, duration %ds, started %s\n",
		comm.FileName, comm.StartValue, comm.Duration,
		comm.StartTime.Format(auction.DateTimeLayout))
	for _, bid := range comm.Bids {
		fmt.Printf("  bid %d by %s at %s (+%ds)\n",
			bid.Value, bid.Bidder, bid.Time.Format(auction.DateTimeLayout), bid.Elapsed)
	}
	if comm.HasEnded {
		fmt.Printf("  ended %s after %ds\n",
			comm.EndTime.Format(auction.DateTimeLayout), comm.EndElapsed)
	} else {
		fmt.Println("  still active")
	}
	return nil
}
