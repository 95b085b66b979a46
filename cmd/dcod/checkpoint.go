package main

import (
	"strconv"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/weaveworks/go-checkpoint"

	"github.com/fluxcd/dco/pkg/config"
)

const (
	versionCheckPeriod = 6 * time.Hour
)

func checkForUpdates(conf config.Config, logger log.Logger) *checkpoint.Checker {
	handleResponse := func(r *checkpoint.CheckResponse, err error) {
		if err != nil {
			logger.Log("err", err)
			return
		}
		if r.Outdated {
			logger.Log("msg", "update available", "latest", r.CurrentVersion, "URL", r.CurrentDownloadURL)
			return
		}
		logger.Log("msg", "up to date", "latest", r.CurrentVersion)
	}

	flags := map[string]string{
		"github-enterprise": strconv.FormatBool(conf.GitHubURL != ""),
		"memcached":         strconv.FormatBool(conf.MemcachedHostname != ""),
	}
	params := checkpoint.CheckParams{
		Product:       "dcod",
		Version:       version,
		SignatureFile: "",
		Flags:         flags,
	}

	return checkpoint.CheckInterval(&params, versionCheckPeriod, handleResponse)
}
