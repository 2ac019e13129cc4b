// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CrawX/go-imap-feedback/config"
	"github.com/CrawX/go-imap-feedback/domain"
	"github.com/CrawX/go-imap-feedback/events"
	"github.com/CrawX/go-imap-feedback/imapsource"
	"github.com/CrawX/go-imap-feedback/listener"
	"github.com/CrawX/go-imap-feedback/log"
	"github.com/CrawX/go-imap-feedback/rspamd"
	"github.com/CrawX/go-imap-feedback/spamassassin"

	"github.com/sirupsen/logrus"
)

func main() {
	log.InitLogging("debug")
	logger := log.Logger(log.LOG_MAIN)

	conf, err := config.ReadConfig("config.toml")
	if err != nil {
		logger.WithField("error", err).Fatal("Could not load config")
	}

	if conf.Loglevel != nil {
		log.SetLogLevel(*conf.Loglevel)
	}

	var classifier domain.LearnClassifier
	if len(conf.RspamdController) > 0 {
		classifier, err = rspamd.NewClient(conf.RspamdController, conf.RspamdPassword)
		if err != nil {
			logger.WithField("error", err).Fatal("Could not start rspamd connector")
		}
	} else {
		classifier, err = spamassassin.NewSpamassassin(conf.SpamassassinHost)
		if err != nil {
			logger.WithField("error", err).Fatal("Could not start spamassassin connector")
		}
	}

	source, err := imapsource.NewSource(conf.ImapHost, conf.User, conf.Password)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not start imap connector")
	}
	defer source.Close()

	configs := []listener.ConfigFunc{}
	if conf.PerUserBayes {
		configs = append(configs, listener.PerUserBayes())
	}
	if conf.ReportSizeLimit > 0 {
		configs = append(configs, listener.ReportSizeLimit(conf.ReportSizeLimit))
	}

	feedbackListener, err := listener.NewFeedbackListener(classifier, source, source, configs...)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not create feedback listener")
	}

	bus := events.NewBus()
	err = bus.Register(feedbackListener)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not register feedback listener")
	}

	session := domain.Session{Username: conf.User}
	watcher := imapsource.NewWatcher(source, bus, session, conf.WatchFolder, time.Duration(conf.PollSeconds)*time.Second)

	stop := make(chan struct{})
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		<-signals
		logger.Info("Shutting down")
		close(stop)
	}()

	logger.WithFields(logrus.Fields{"folder": conf.WatchFolder, "peruser": conf.PerUserBayes, "pollseconds": conf.PollSeconds}).Info("Watching for new mail")
	watcher.Run(stop)

	// Let in-flight classifier reports finish before the connection drops.
	feedbackListener.Wait()
}
