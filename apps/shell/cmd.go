package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/huynhmanh219/project-course-sub001/core/authz"
	"github.com/huynhmanh219/project-course-sub001/core/course"
	"github.com/huynhmanh219/project-course-sub001/core/guard"
	"github.com/huynhmanh219/project-course-sub001/core/member"
	"github.com/huynhmanh219/project-course-sub001/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	sessions *session.Manager
	courses  *course.Service
	members  *member.Service
	gate     authz.Gate
	guard    *guard.Guard
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  login -email EMAIL                 - sign in; the password is prompted next")
	fmt.Println("  logout                             - sign out and forget the stored session")
	fmt.Println("  whoami                             - show the current session")
	fmt.Println("  passwd                             - change the current account's password")
	fmt.Println("  courses list                       - list courses")
	fmt.Println("  courses rm -id ID                  - delete a course (guarded)")
	fmt.Println("  classes list -course ID            - list class sections of a course")
	fmt.Println("  classes rm -id ID                  - delete a class section (guarded)")
	fmt.Println("  enroll -class ID -students A,B,C   - enroll students into a section (guarded)")
	fmt.Println("  members teachers|students          - list lecturer or student accounts")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "The account email. The password will be prompted next.")

	coursesRmCmd := flag.NewFlagSet("courses rm", flag.ExitOnError)
	coursesRmID := coursesRmCmd.String("id", "", "The course to delete.")

	classesListCmd := flag.NewFlagSet("classes list", flag.ExitOnError)
	classesListCourse := classesListCmd.String("course", "", "The parent course.")

	classesRmCmd := flag.NewFlagSet("classes rm", flag.ExitOnError)
	classesRmID := classesRmCmd.String("id", "", "The class section to delete.")

	enrollCmd := flag.NewFlagSet("enroll", flag.ExitOnError)
	enrollClass := enrollCmd.String("class", "", "The class section to enroll into.")
	enrollStudents := enrollCmd.String("students", "", "Comma-separated student ids.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		return cli.login(ctx, *loginEmail, string(pwd))

	case "logout":
		return cli.sessions.Logout(ctx)

	case "whoami":
		return cli.whoami()

	case "passwd":
		return cli.changePassword(ctx)

	case "courses":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		switch args[2] {
		case "list":
			return cli.listCourses(ctx)
		case "rm":
			if err := coursesRmCmd.Parse(args[3:]); err != nil {
				return err
			}
			if *coursesRmID == "" {
				coursesRmCmd.Usage()
				return errHelp
			}
			return cli.deleteCourse(ctx, *coursesRmID)
		}

	case "classes":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		switch args[2] {
		case "list":
			if err := classesListCmd.Parse(args[3:]); err != nil {
				return err
			}
			return cli.listClasses(ctx, *classesListCourse)
		case "rm":
			if err := classesRmCmd.Parse(args[3:]); err != nil {
				return err
			}
			if *classesRmID == "" {
				classesRmCmd.Usage()
				return errHelp
			}
			return cli.deleteClass(ctx, *classesRmID)
		}

	case "enroll":
		if err := enrollCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *enrollClass == "" || *enrollStudents == "" {
			enrollCmd.Usage()
			return errHelp
		}
		return cli.enroll(ctx, *enrollClass, strings.Split(*enrollStudents, ","))

	case "members":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.listMembers(ctx, args[2])
	}

	cli.printUsage()
	return errHelp
}

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	sess, err := cli.sessions.Login(ctx, session.Credentials{Email: email, Password: pwd})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", sess.User.FullName(), sess.User.Role)
	return nil
}

func (cli *commandLine) changePassword(ctx context.Context) error {
	if _, err := cli.currentUser(); err != nil {
		return err
	}

	prompt := func(label string) (string, error) {
		fmt.Print(label)
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		return string(pwd), err
	}

	current, err := prompt("Current password:")
	if err != nil {
		return err
	}
	pwd, err := prompt("New password:")
	if err != nil {
		return err
	}
	confirm, err := prompt("Confirm new password:")
	if err != nil {
		return err
	}

	pc := session.PasswordChange{Current: current, Password: pwd, PasswordConfirm: confirm}
	if err := cli.sessions.ChangePassword(ctx, pc); err != nil {
		return err
	}
	fmt.Println("password changed")
	return nil
}

func (cli *commandLine) whoami() error {
	sess, err := cli.sessions.Current()
	if err != nil {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s expires=%s\n",
		sess.User.FullName(), sess.User.Email, sess.User.Role, sess.ExpiresAt.Format("2006-01-02 15:04"))
	return nil
}

func (cli *commandLine) listCourses(ctx context.Context) error {
	courses, err := cli.courses.List(ctx)
	if err != nil {
		return err
	}
	for _, crs := range courses {
		fmt.Printf("%s  %-10s %s (%d active sections)\n", crs.ID, crs.Code, crs.Name, crs.ActiveClassCount)
	}
	return nil
}

// deleteCourse is the canonical mutation flow: gate, then guard, then the
// network call; a blocked step means no request is ever sent.
func (cli *commandLine) deleteCourse(ctx context.Context, id string) error {
	usr, err := cli.currentUser()
	if err != nil {
		return err
	}
	decision, err := cli.guard.CanDeleteCourse(ctx, usr, id)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		printBlocked(decision)
		return nil
	}
	if err := cli.courses.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Println("course deleted")
	return nil
}

func (cli *commandLine) listClasses(ctx context.Context, courseID string) error {
	sections, err := cli.courses.Classes(ctx, courseID)
	if err != nil {
		return err
	}
	for _, section := range sections {
		fmt.Printf("%s  %s (%d/%d students)\n", section.ID, section.Name, section.EnrolledCount, section.MaxStudents)
	}
	return nil
}

func (cli *commandLine) deleteClass(ctx context.Context, id string) error {
	usr, err := cli.currentUser()
	if err != nil {
		return err
	}
	decision, err := cli.guard.CanDeleteClassSection(ctx, usr, id)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		printBlocked(decision)
		return nil
	}
	if err := cli.courses.DeleteClass(ctx, id); err != nil {
		return err
	}
	fmt.Println("class section deleted")
	return nil
}

func (cli *commandLine) enroll(ctx context.Context, classID string, studentIDs []string) error {
	usr, err := cli.currentUser()
	if err != nil {
		return err
	}
	decision, err := cli.guard.CanEnroll(ctx, usr, classID, len(studentIDs))
	if err != nil {
		return err
	}
	if !decision.Allowed {
		printBlocked(decision)
		return nil
	}
	if err := cli.courses.Enroll(ctx, classID, course.EnrollStudents{StudentIDs: studentIDs}); err != nil {
		return err
	}
	fmt.Printf("enrolled %d student(s)\n", len(studentIDs))
	return nil
}

func (cli *commandLine) listMembers(ctx context.Context, kind string) error {
	usr, err := cli.currentUser()
	if err != nil {
		return err
	}
	if !cli.gate.Can(usr, authz.ActionViewMembers, nil) {
		fmt.Println("blocked: permission denied")
		return nil
	}

	switch kind {
	case "teachers", "lecturers":
		lecturers, err := cli.members.Lecturers(ctx)
		if err != nil {
			return err
		}
		for _, lect := range lecturers {
			fmt.Printf("%s  %s %s <%s>\n", lect.ID, lect.FirstName, lect.LastName, lect.Email)
		}
	case "students":
		students, err := cli.members.Students(ctx)
		if err != nil {
			return err
		}
		for _, stu := range students {
			fmt.Printf("%s  %s %s <%s> [%s]\n", stu.ID, stu.FirstName, stu.LastName, stu.Email, stu.StudentCode)
		}
	default:
		cli.printUsage()
		return errHelp
	}
	return nil
}

func (cli *commandLine) currentUser() (session.User, error) {
	sess, err := cli.sessions.Current()
	if err != nil {
		return session.User{}, errors.New("not signed in; run `login` first")
	}
	return sess.User, nil
}

func printBlocked(decision guard.Decision) {
	fmt.Println("blocked:", decision.Reason)
	for _, ref := range decision.Blocking {
		fmt.Printf("  - %s %s %s\n", ref.Kind, ref.ID, ref.Label)
	}
}
