// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/stat"
)

var (
	statDescs = stat.New("descriptors", "Executed CCP descriptors",
		stat.Console, stat.Rate{}, stat.Prometheus("ccp_descriptors"))
	statSkipped = stat.New("skipped", "Descriptors skipped as unimplemented or unsupported",
		stat.Simple, stat.Prometheus("ccp_skipped_descriptors"))
	statFaulted = stat.New("faulted", "Descriptors failed with memory, bounds or inflate errors",
		stat.Simple, stat.Prometheus("ccp_faulted_descriptors"))
	statHashed = stat.New("hashed", "Bytes fed into hash contexts",
		stat.FormatKB, stat.Prometheus("ccp_hashed_bytes"))
	statInflated = stat.New("inflated", "Bytes produced by the zlib engine",
		stat.FormatKB, stat.Prometheus("ccp_inflated_bytes"))
	statDrains = stat.New("drains", "Queue drains",
		stat.Console, stat.Prometheus("ccp_queue_drains"))
	statDrainLen = stat.New("drain length", "Descriptors per queue drain",
		stat.Distribution{})

	statEngines = map[desc.Engine]*stat.Val{
		desc.AES:      stat.New("engine aes", "AES descriptors", stat.Prometheus("ccp_engine_aes")),
		desc.XTS:      stat.New("engine xts", "XTS-AES-128 descriptors", stat.Prometheus("ccp_engine_xts")),
		desc.DES3:     stat.New("engine 3des", "3DES descriptors", stat.Prometheus("ccp_engine_3des")),
		desc.SHA:      stat.New("engine sha", "SHA descriptors", stat.Prometheus("ccp_engine_sha")),
		desc.RSA:      stat.New("engine rsa", "RSA descriptors", stat.Prometheus("ccp_engine_rsa")),
		desc.Passthru: stat.New("engine passthru", "Passthrough descriptors", stat.Prometheus("ccp_engine_passthru")),
		desc.Zlib:     stat.New("engine zlib", "Zlib decompression descriptors", stat.Prometheus("ccp_engine_zlib")),
		desc.ECC:      stat.New("engine ecc", "ECC descriptors", stat.Prometheus("ccp_engine_ecc")),
	}
)
