// Command shell is a small interactive client for the learning platform
// API: it signs in, lists and mutates courses, class sections and rosters,
// running every mutation through the authorization gate and the lifecycle
// guard first.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/huynhmanh219/project-course-sub001/api"
	"github.com/huynhmanh219/project-course-sub001/core"
	"github.com/huynhmanh219/project-course-sub001/core/authz"
	"github.com/huynhmanh219/project-course-sub001/core/course"
	"github.com/huynhmanh219/project-course-sub001/core/guard"
	"github.com/huynhmanh219/project-course-sub001/core/member"
	"github.com/huynhmanh219/project-course-sub001/core/session"
	logsvc "github.com/huynhmanh219/project-course-sub001/services/logger"
	credstore "github.com/huynhmanh219/project-course-sub001/storage/credentials"
)

func main() {
	if err := run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	conf, err := core.NewConfig()
	if err != nil {
		return err
	}

	std := log.New(os.Stdout, fmt.Sprintf("%s : ", conf.AppName), log.LstdFlags|log.Lshortfile)
	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewConsoleLogger(std, conf.Debug)
	}

	store, err := credstore.NewFileStore(conf.CredentialsFile, conf.CredentialsKey)
	if err != nil {
		return err
	}

	client, err := api.NewClient(conf, logger)
	if err != nil {
		return err
	}
	manager := session.NewManager(store, client, logger, conf)
	client.SetTokenSource(manager)
	manager.OnForcedLogout(func() {
		fmt.Println("session expired; please log in again")
	})

	gate := authz.NewGate()
	courseSvc := course.NewService(client)

	cli := &commandLine{
		sessions: manager,
		courses:  courseSvc,
		members:  member.NewService(client),
		gate:     gate,
		guard:    guard.NewGuard(courseSvc, gate),
	}
	return cli.run(args)
}
