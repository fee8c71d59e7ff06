// Package console implements the line-oriented operator interface.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vytor/profilehub/internal/config"
	apperrors "github.com/vytor/profilehub/internal/errors"
	"github.com/vytor/profilehub/internal/logger"
	"github.com/vytor/profilehub/internal/models"
	"github.com/vytor/profilehub/internal/services"
)

const divider = "--------------------------------------"

// Controller reads commands from in and writes results to out. It shares
// the profile service with the HTTP API.
type Controller struct {
	svc services.ProfileService
	in  *bufio.Scanner
	out io.Writer
	log *logger.Logger
}

func NewController(svc services.ProfileService, in io.Reader, out io.Writer) *Controller {
	return &Controller{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
		log: logger.Default().WithPrefix("console"),
	}
}

// Run processes commands until "exit", end of input or ctx cancellation.
// On exit and end of input the collection is saved one last time and the
// save error, if any, is returned.
func (c *Controller) Run(ctx context.Context) error {
	ctx = logger.NewContext(ctx, c.log)

	c.println("\n--- Profile Manager Console ---")
	c.println("Enter a command (type 'help' for options, 'exit' to quit).")

	for {
		if ctx.Err() != nil {
			c.log.Debug("console stopped: %v", ctx.Err())
			return nil
		}

		line, ok := c.prompt(">> ")
		if !ok {
			c.log.Info("end of input, saving before exit")
			return c.finalSave(ctx)
		}
		command := strings.ToLower(line)

		switch command {
		case "":
			continue
		case "create":
			c.create(ctx)
		case "display":
			c.display(c.svc.ListProfiles(ctx))
		case "rename":
			c.rename(ctx)
		case "age":
			c.updateAge(ctx)
		case "delete":
			c.delete(ctx)
		case "sort-user":
			c.sorted(ctx, services.SortByUsername)
		case "sort-age":
			c.sorted(ctx, services.SortByAge)
		case "group":
			c.group(ctx)
		case "match":
			c.match(ctx)
		case "search":
			c.search(ctx)
		case "login":
			c.login(ctx)
		case "help":
			c.help()
		case "exit":
			return c.finalSave(ctx)
		default:
			c.println("Unknown command. Type 'help'.")
		}
	}
}

func (c *Controller) finalSave(ctx context.Context) error {
	if err := c.svc.Save(ctx); err != nil {
		c.printf("Error saving profiles: %s\n", message(err))
		return err
	}
	c.println("Profiles saved. Goodbye.")
	return nil
}

func (c *Controller) create(ctx context.Context) {
	c.println("\n--- Starting New Profile Creation ---")
	username, ok := c.prompt("Enter Username: ")
	if !ok {
		return
	}
	ageText, ok := c.prompt("Enter Age: ")
	if !ok {
		return
	}
	age, err := strconv.Atoi(ageText)
	if err != nil {
		c.println("Invalid input. Please enter a number for age.")
		return
	}
	interest, ok := c.chooseInterest()
	if !ok {
		return
	}

	p, err := c.svc.CreateProfile(ctx, services.CreateProfileInput{Username: username, Age: age, Interest: interest})
	if err != nil {
		c.printf("Error: %s\n", message(err))
		return
	}
	c.printf("Profile created successfully for: %s\n", p.Username)
}

// chooseInterest asks until a catalog entry is picked by number or name.
func (c *Controller) chooseInterest() (string, bool) {
	names := c.svc.Interests()
	for {
		c.println("\nSelect your Primary Interest:")
		for i, name := range names {
			c.printf(" %d. %s\n", i+1, name)
		}
		choice, ok := c.prompt(fmt.Sprintf("Enter choice (number 1-%d): ", len(names)))
		if !ok {
			return "", false
		}
		if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(names) {
			return names[n-1], true
		}
		if in, found := models.LookupInterest(choice); found {
			return in.Name, true
		}
		c.println("Invalid input. Please enter a number.")
	}
}

func (c *Controller) display(profiles []models.Profile) {
	if len(profiles) == 0 {
		c.println("\n--- No Profiles Loaded ---")
		return
	}
	c.printf("\n--- All Managed Profiles (%d) ---\n", len(profiles))
	for _, p := range profiles {
		c.printf(" * %s\n", p)
	}
	c.println(divider)
}

func (c *Controller) rename(ctx context.Context) {
	oldName, ok := c.prompt("Enter current username: ")
	if !ok {
		return
	}
	newName, ok := c.prompt("Enter new username: ")
	if !ok {
		return
	}
	if err := c.svc.RenameProfile(ctx, oldName, newName); err != nil {
		c.printf("Error: %s\n", message(err))
		return
	}
	c.printf("Renamed profile '%s' to '%s'.\n", oldName, newName)
}

func (c *Controller) updateAge(ctx context.Context) {
	username, ok := c.prompt("Enter username: ")
	if !ok {
		return
	}
	ageText, ok := c.prompt("Enter new age: ")
	if !ok {
		return
	}
	age, err := strconv.Atoi(ageText)
	if err != nil {
		c.println("Invalid input. Please enter a number for age.")
		return
	}
	if err := c.svc.UpdateAge(ctx, username, age); err != nil {
		c.printf("Error: %s\n", message(err))
		return
	}
	c.printf("Updated age of '%s' to %d.\n", username, age)
}

func (c *Controller) delete(ctx context.Context) {
	username, ok := c.prompt("Enter username to delete: ")
	if !ok {
		return
	}
	if err := c.svc.DeleteProfile(ctx, username); err != nil {
		c.printf("Error: %s\n", message(err))
		return
	}
	c.printf("Deleted profile '%s'.\n", username)
}

func (c *Controller) sorted(ctx context.Context, by services.SortKey) {
	profiles, err := c.svc.SortedProfiles(ctx, by)
	if err != nil {
		c.printf("Error: %s\n", message(err))
		return
	}
	c.display(profiles)
}

func (c *Controller) group(ctx context.Context) {
	interest, ok := c.prompt("Group by which interest? ")
	if !ok {
		return
	}
	group := c.svc.GroupByInterest(ctx, interest)
	c.printf("--- %s ---\n", group.Name)
	if group.Empty() {
		c.println("Group is empty.")
		return
	}
	for _, p := range group.Profiles {
		c.printf(" > %s\n", p.Username)
	}
}

func (c *Controller) match(ctx context.Context) {
	username, ok := c.prompt("Enter your username: ")
	if !ok {
		return
	}
	if _, err := c.svc.GetProfile(ctx, username); err != nil {
		c.printf("User '%s' not found.\n", username)
		return
	}
	minText, ok := c.prompt("Min Age: ")
	if !ok {
		return
	}
	maxText, ok := c.prompt("Max Age: ")
	if !ok {
		return
	}
	minAge, errMin := strconv.Atoi(minText)
	maxAge, errMax := strconv.Atoi(maxText)
	if errMin != nil || errMax != nil {
		c.println("Invalid input. Please enter numbers for age.")
		return
	}

	matches, err := c.svc.FindMatches(ctx, username, minAge, maxAge)
	if err != nil {
		c.printf("Error: %s\n", message(err))
		if apperrors.HasCode(err, apperrors.ErrCodeAgeRestriction) {
			c.println("Match cancelled.")
		}
		return
	}

	c.printf("\n--- Matches (Age %d-%d) ---\n", minAge, maxAge)
	if len(matches) == 0 {
		c.println("No matches found.")
		return
	}
	for _, p := range matches {
		c.printf(" [MATCH] %s\n", p)
	}
}

func (c *Controller) search(ctx context.Context) {
	username, ok := c.prompt("Enter username to search in DB: ")
	if !ok {
		return
	}
	p, err := c.svc.SearchStored(ctx, username)
	switch {
	case apperrors.HasCode(err, apperrors.ErrCodeNotFound):
		c.printf("[Database Result] No profile found with name '%s'.\n", username)
	case err != nil:
		c.printf("Database error: %s\n", message(err))
	default:
		c.println("\n[Database Result] Found Profile:")
		c.println(divider)
		c.printf(" Username : %s\n", p.Username)
		c.printf(" Age      : %d\n", p.Age)
		c.printf(" Interest : %s\n", p.PrimaryInterest)
		c.println(divider)
	}
}

func (c *Controller) login(ctx context.Context) {
	c.println("\n--- Database Login ---")
	c.println("1. Admin")
	c.println("2. Guest")
	choice, ok := c.prompt("Choose Role (1-2): ")
	if !ok {
		return
	}

	var role config.Role
	switch choice {
	case "1":
		role = c.svc.SwitchRole(ctx, string(config.RoleAdmin))
	case "2":
		role = c.svc.SwitchRole(ctx, string(config.RoleGuest))
	default:
		c.println("Invalid choice.")
		return
	}
	c.printf("Logged in as %s.\n", role)
}

func (c *Controller) help() {
	c.println("\nAvailable Commands:")
	c.println("  create      - Starts the interactive profile creation process.")
	c.println("  display     - Shows all managed profiles.")
	c.println("  search      - Searches the database for a specific user.")
	c.println("  rename      - Rename an existing profile's username.")
	c.println("  age         - Update a profile's age.")
	c.println("  delete      - Delete a profile.")
	c.println("  sort-user   - Shows profiles sorted by username.")
	c.println("  sort-age    - Shows profiles sorted by age.")
	c.println("  group       - Groups profiles by primary interest.")
	c.println("  match       - Find matches based on preferences.")
	c.println("  login       - Login to admin or guest.")
	c.println("  exit        - Saves state to the database and quits.")
}

// prompt writes label and reads one trimmed line. It reports false at end
// of input.
func (c *Controller) prompt(label string) (string, bool) {
	c.printf("%s", label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			c.log.Warn("reading input: %v", err)
		}
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Controller) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Controller) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func message(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
