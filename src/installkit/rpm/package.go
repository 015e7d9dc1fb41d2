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

//AssemblePackage combines the lead, the signature section (computed here),
//the header section and the payload into an RPM package. The header is
//sealed as an immutable region. The payload must already be compressed;
//uncompressedPayloadSize is recorded in the signature.
func AssemblePackage(lead *Lead, header *Header, payload []byte, uncompressedPayloadSize uint32) ([]byte, error) {
	headerSection := header.ToBinaryWithRegion(RpmtagHeaderImmutable)
	signatureSection, err := MakeSignatureSection(headerSection, payload, uncompressedPayloadSize)
	if err != nil {
		return nil, err
	}

	//combine everything with the correct alignment
	combined1 := appendAlignedTo8Byte(lead.ToBinary(), signatureSection)
	combined2 := appendAlignedTo8Byte(combined1, headerSection)
	return append(combined2, payload...), nil
}

//According to [LSB, 25.2.2], "A Header structure shall be aligned to an 8 byte
//boundary."
func appendAlignedTo8Byte(a []byte, b []byte) []byte {
	result := a
	for len(result)%8 != 0 {
		result = append(result, 0x00)
	}
	return append(result, b...)
}

//Package is an RPM package split into its sections, as returned by
//DecodePackage.
type Package struct {
	Lead      *Lead
	Signature *Header
	Header    *Header
	Payload   []byte
}

//DecodePackage splits an RPM package into its sections. The payload is not
//decompressed.
func DecodePackage(data []byte) (*Package, error) {
	lead, err := DecodeLead(data)
	if err != nil {
		return nil, err
	}
	offset := leadSize

	signature, n, err := Decode(data[offset:])
	if err != nil {
		return nil, err
	}
	offset = alignedLength(offset+n, 8)
	if offset > len(data) {
		return nil, ErrMalformedHeader
	}

	header, n, err := Decode(data[offset:])
	if err != nil {
		return nil, err
	}
	offset += n

	return &Package{
		Lead:      lead,
		Signature: signature,
		Header:    header,
		Payload:   data[offset:],
	}, nil
}
