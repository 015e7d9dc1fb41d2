/*******************************************************************************
*
* Copyright 2016 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package rpm

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
)

//MakeSignatureSection produces the signature section of an RPM package for
//the given (already serialized) header section and the compressed payload.
func MakeSignatureSection(headerSection, payload []byte, uncompressedPayloadSize uint32) ([]byte, error) {
	h := &Header{}

	//NOTE that some fields validate both header+payload, some only the
	//payload, and some only the header. [LSB, 22.2.3]

	//size information
	err := h.AddInt32Value(RpmsigtagSize, []int32{
		int32(uint32(len(headerSection)) + uint32(len(payload))),
	})
	if err != nil {
		return nil, err
	}
	err = h.AddInt32Value(RpmsigtagPayloadSize, []int32{
		int32(uncompressedPayloadSize),
	})
	if err != nil {
		return nil, err
	}

	//SHA1 digest of header section
	sha1sum := sha1.Sum(headerSection)
	err = h.AddStringValue(RpmsigtagSHA1, hex.EncodeToString(sha1sum[:]), false)
	if err != nil {
		return nil, err
	}

	//MD5 digest of header + payload section
	md5digest := md5.New()
	md5digest.Write(headerSection)
	md5digest.Write(payload)
	err = h.AddBinaryValue(RpmsigtagMD5, md5digest.Sum(nil))
	if err != nil {
		return nil, err
	}

	return h.ToBinaryWithRegion(RpmtagHeaderSignatures), nil
}
