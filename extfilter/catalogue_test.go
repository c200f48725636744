// Copyright 2025 The Outline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package extfilter_test

import (
	"testing"

	"github.com/Jigsaw-Code/tlsmutate/extfilter"
	"github.com/Jigsaw-Code/tlsmutate/handshake"
	"github.com/Jigsaw-Code/tlsmutate/internal/hellotest"
	"github.com/stretchr/testify/require"
)

var (
	catalogueALPN       = []byte{0, 4, 1, 'a', 1, 'b'}
	catalogueSigAlgs    = []byte{0, 4, 6, 1, 5, 3}
	catalogueGroups     = []byte{0, 4, 0, 0x1d, 0, 0x17}
	cataloguePoints     = []byte{1, 0}
	catalogueRenego     = []byte{0}
	catalogueSRTP       = []byte{0, 2, 0, 1, 0}
	catalogueKeyShare   = append([]byte{0, 36, 0, 0x1d, 0, 32}, make([]byte, 32)...)
	catalogueServerALPN = []byte{0, 2, 1, 'a'}
)

func catalogueClientExtensions(h handshake.Header) []hellotest.Extension {
	exts := []hellotest.Extension{
		sni(),
		{Type: handshake.ExtensionSupportedGroups, Data: catalogueGroups},
		{Type: handshake.ExtensionECPointFormats, Data: cataloguePoints},
		{Type: handshake.ExtensionSignatureAlgorithms, Data: catalogueSigAlgs},
		{Type: handshake.ExtensionALPN, Data: catalogueALPN},
		{Type: handshake.ExtensionRenegotiationInfo, Data: catalogueRenego},
	}
	if h.Datagram {
		exts = append(exts, hellotest.Extension{Type: handshake.ExtensionUseSRTP, Data: catalogueSRTP})
	}
	if handshake.NormalizeVersion(h.Version) >= handshake.VersionTLS13 {
		exts = append(exts, hellotest.Extension{Type: handshake.ExtensionKeyShare, Data: catalogueKeyShare})
	}
	return exts
}

func catalogueServerExtensions() []hellotest.Extension {
	return []hellotest.Extension{
		{Type: handshake.ExtensionRenegotiationInfo, Data: catalogueRenego},
		{Type: handshake.ExtensionALPN, Data: catalogueServerALPN},
		{Type: handshake.ExtensionECPointFormats, Data: cataloguePoints},
	}
}

func marshalHello(h handshake.Header, exts []hellotest.Extension) []byte {
	if h.Type == handshake.TypeServerHello {
		return hellotest.ServerHello{Version: h.Version, Extensions: exts}.Marshal()
	}
	return hellotest.ClientHello{Version: h.Version, Datagram: h.Datagram, Cookie: []byte{}, Extensions: exts}.Marshal()
}

// TestCatalogue runs the negative extension tests against every transport and version they apply to and checks
// that exactly the targeted payload was rewritten.
func TestCatalogue(t *testing.T) {
	simple := hellotest.SimpleSNI()
	badSNI := append([]byte{0, 0, 0}, simple...)

	stream12 := handshake.Header{Type: handshake.TypeClientHello, Version: handshake.VersionTLS12}
	stream13 := handshake.Header{Type: handshake.TypeClientHello, Version: handshake.VersionTLS13}
	dtls12 := handshake.Header{Type: handshake.TypeClientHello, Version: handshake.VersionDTLS12, Datagram: true}
	dtls10 := handshake.Header{Type: handshake.TypeClientHello, Version: handshake.VersionDTLS10, Datagram: true}
	stream10 := handshake.Header{Type: handshake.TypeClientHello, Version: handshake.VersionTLS10}
	generic := []handshake.Header{stream10, stream12, stream13, dtls10, dtls12}
	tls12Plus := []handshake.Header{stream12, dtls12}
	server := []handshake.Header{
		{Type: handshake.TypeServerHello, Version: handshake.VersionTLS10},
		{Type: handshake.TypeServerHello, Version: handshake.VersionTLS12},
		{Type: handshake.TypeServerHello, Version: handshake.VersionTLS13},
		{Type: handshake.TypeServerHello, Version: handshake.VersionDTLS12, Datagram: true},
	}

	for _, tc := range []struct {
		name    string
		headers []handshake.Header
		filter  extfilter.Filter
		ext     handshake.ExtensionType
		want    []byte
	}{
		{"DamageSniLength", generic, extfilter.Damager(handshake.ExtensionServerName, 1), handshake.ExtensionServerName,
			append([]byte{0, 12 + extfilter.DamageIncrement, 0, 0, 9}, "host.name"...)},
		{"DamageSniHostLength", generic, extfilter.Damager(handshake.ExtensionServerName, 4), handshake.ExtensionServerName,
			append([]byte{0, 12, 0, 0, 9 + extfilter.DamageIncrement}, "host.name"...)},
		{"TruncateSni", generic, extfilter.Truncator(handshake.ExtensionServerName, 7), handshake.ExtensionServerName,
			simple[:7]},
		{"BadSni", generic, extfilter.Replacer(handshake.ExtensionServerName, badSNI), handshake.ExtensionServerName,
			badSNI},
		{"EmptySni", generic, extfilter.Replacer(handshake.ExtensionServerName, []byte{0, 0}), handshake.ExtensionServerName,
			[]byte{0, 0}},
		{"EmptyAlpnExtension", generic, extfilter.Replacer(handshake.ExtensionALPN, nil), handshake.ExtensionALPN,
			[]byte{}},
		{"EmptyAlpnList", generic, extfilter.Replacer(handshake.ExtensionALPN, []byte{0, 0}), handshake.ExtensionALPN,
			[]byte{0, 0}},
		{"OneByteAlpn", generic, extfilter.Truncator(handshake.ExtensionALPN, 1), handshake.ExtensionALPN,
			[]byte{0}},
		{"AlpnMissingValue", generic, extfilter.Truncator(handshake.ExtensionALPN, 5), handshake.ExtensionALPN,
			[]byte{0, 4, 1, 'a', 1}},
		{"AlpnZeroLength", generic, extfilter.Replacer(handshake.ExtensionALPN, []byte{1, 'a', 0}), handshake.ExtensionALPN,
			[]byte{1, 'a', 0}},
		{"AlpnReturnedEmptyList", server, extfilter.Replacer(handshake.ExtensionALPN, []byte{0, 0}), handshake.ExtensionALPN,
			[]byte{0, 0}},
		{"AlpnReturnedEmptyName", server, extfilter.Replacer(handshake.ExtensionALPN, []byte{0, 1, 0}), handshake.ExtensionALPN,
			[]byte{0, 1, 0}},
		{"AlpnReturnedListTrailingData", server, extfilter.Replacer(handshake.ExtensionALPN, []byte{0, 2, 1, 'a', 0}), handshake.ExtensionALPN,
			[]byte{0, 2, 1, 'a', 0}},
		{"AlpnReturnedExtraEntry", server, extfilter.Replacer(handshake.ExtensionALPN, []byte{0, 4, 1, 'a', 1, 'b'}), handshake.ExtensionALPN,
			[]byte{0, 4, 1, 'a', 1, 'b'}},
		{"AlpnReturnedBadListLength", server, extfilter.Replacer(handshake.ExtensionALPN, []byte{0, 0x99, 1, 'a', 0}), handshake.ExtensionALPN,
			[]byte{0, 0x99, 1, 'a', 0}},
		{"AlpnReturnedBadNameLength", server, extfilter.Replacer(handshake.ExtensionALPN, []byte{0, 2, 0x99, 'a'}), handshake.ExtensionALPN,
			[]byte{0, 2, 0x99, 'a'}},
		{"SrtpShort", []handshake.Header{dtls10, dtls12}, extfilter.Truncator(handshake.ExtensionUseSRTP, 3), handshake.ExtensionUseSRTP,
			[]byte{0, 2, 0}},
		{"SrtpOdd", []handshake.Header{dtls10, dtls12}, extfilter.Replacer(handshake.ExtensionUseSRTP, []byte{0, 1, 0xff, 0}), handshake.ExtensionUseSRTP,
			[]byte{0, 1, 0xff, 0}},
		{"SignatureAlgorithmsBadLength", tls12Plus, extfilter.Replacer(handshake.ExtensionSignatureAlgorithms, []byte{0}), handshake.ExtensionSignatureAlgorithms,
			[]byte{0}},
		{"SignatureAlgorithmsTrailingData", tls12Plus, extfilter.Replacer(handshake.ExtensionSignatureAlgorithms, []byte{0, 2, 4, 1, 0}), handshake.ExtensionSignatureAlgorithms,
			[]byte{0, 2, 4, 1, 0}},
		{"SignatureAlgorithmsEmpty", tls12Plus, extfilter.Replacer(handshake.ExtensionSignatureAlgorithms, []byte{0, 0}), handshake.ExtensionSignatureAlgorithms,
			[]byte{0, 0}},
		{"SignatureAlgorithmsOddLength", tls12Plus, extfilter.Replacer(handshake.ExtensionSignatureAlgorithms, []byte{0, 1, 4}), handshake.ExtensionSignatureAlgorithms,
			[]byte{0, 1, 4}},
		{"SupportedCurvesShort", generic, extfilter.Replacer(handshake.ExtensionEllipticCurves, []byte{0, 1, 0}), handshake.ExtensionSupportedGroups,
			[]byte{0, 1, 0}},
		{"SupportedCurvesBadLength", generic, extfilter.Replacer(handshake.ExtensionEllipticCurves, []byte{9, 0x99, 0, 0}), handshake.ExtensionSupportedGroups,
			[]byte{9, 0x99, 0, 0}},
		{"SupportedCurvesTrailingData", generic, extfilter.Replacer(handshake.ExtensionEllipticCurves, []byte{0, 2, 0, 0, 0}), handshake.ExtensionSupportedGroups,
			[]byte{0, 2, 0, 0, 0}},
		{"SupportedPointsEmpty", generic, extfilter.Replacer(handshake.ExtensionECPointFormats, []byte{0}), handshake.ExtensionECPointFormats,
			[]byte{0}},
		{"SupportedPointsBadLength", generic, extfilter.Replacer(handshake.ExtensionECPointFormats, []byte{0x99, 0, 0}), handshake.ExtensionECPointFormats,
			[]byte{0x99, 0, 0}},
		{"SupportedPointsTrailingData", generic, extfilter.Replacer(handshake.ExtensionECPointFormats, []byte{1, 0, 0}), handshake.ExtensionECPointFormats,
			[]byte{1, 0, 0}},
		{"RenegotiationInfoBadLength", generic, extfilter.Replacer(handshake.ExtensionRenegotiationInfo, []byte{0x99}), handshake.ExtensionRenegotiationInfo,
			[]byte{0x99}},
		{"RenegotiationInfoMismatch", generic, extfilter.Replacer(handshake.ExtensionRenegotiationInfo, []byte{1, 0}), handshake.ExtensionRenegotiationInfo,
			[]byte{1, 0}},
		{"RenegotiationInfoExtensionEmpty", generic, extfilter.Replacer(handshake.ExtensionRenegotiationInfo, nil), handshake.ExtensionRenegotiationInfo,
			[]byte{}},
		{"EmptyClientKeyShare", []handshake.Header{stream13}, extfilter.Truncator(handshake.ExtensionKeyShare, 2), handshake.ExtensionKeyShare,
			[]byte{0, 36}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for _, h := range tc.headers {
				var exts []hellotest.Extension
				if h.Type == handshake.TypeServerHello {
					exts = catalogueServerExtensions()
				} else {
					exts = catalogueClientExtensions(h)
				}
				v := tc.filter.FilterHandshake(h, marshalHello(h, exts))
				require.Equal(t, extfilter.ActionChange, v.Action, h.String())

				want := make([]hellotest.Extension, len(exts))
				copy(want, exts)
				for i := range want {
					if want[i].Type == tc.ext {
						want[i].Data = tc.want
					}
				}
				require.Equal(t, marshalHello(h, want), v.Data, h.String())
			}
		})
	}
}

// A zero-length host name entry in front of a valid one. Peers have been seen to reject this only when the empty
// entry is not the last one, so the rewritten extension must keep that exact order.
func TestBadSniShape(t *testing.T) {
	simple := hellotest.SimpleSNI()
	f := extfilter.Replacer(handshake.ExtensionServerName, append([]byte{0, 0, 0}, simple...))
	v := f.FilterHandshake(clientHeader, clientHello(sni()))
	require.Equal(t, extfilter.ActionChange, v.Action)

	exts := extensionsOf(t, clientHeader, v.Data)
	require.Len(t, exts, 1)
	payload := exts[0].Data
	require.Len(t, payload, 3+len(simple))
	require.Equal(t, []byte{0, 0, 0}, payload[:3])
	require.Equal(t, simple, payload[3:])
}

// Captures of signature_algorithms are inspected pair by pair.
func TestCaptureSignatureAlgorithms(t *testing.T) {
	capture := extfilter.Capture(handshake.ExtensionSignatureAlgorithms)
	h := handshake.Header{Type: handshake.TypeClientHello, Version: handshake.VersionTLS12}
	capture.FilterHandshake(h, marshalHello(h, catalogueClientExtensions(h)))

	ext, ok := capture.Captured()
	require.True(t, ok)
	algorithms := [][2]uint32{{6, 1}, {5, 3}}
	require.Equal(t, 2+len(algorithms)*2, ext.Len())
	cursor := 2
	for _, alg := range algorithms {
		var v uint32
		require.True(t, ext.Read(cursor, 1, &v))
		require.Equal(t, alg[0], v)
		require.True(t, ext.Read(cursor+1, 1, &v))
		require.Equal(t, alg[1], v)
		cursor += 2
	}
}
