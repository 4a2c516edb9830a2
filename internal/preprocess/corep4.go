// Copyright 2024 The x4c Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package preprocess

// CoreP4 is the built-in core.p4 shim: the small set of extern declarations
// (packet_in, packet_out, a running checksum unit) and the base error
// enumeration that every P4 program is expected to be able to #include
// without shipping its own copy, mirroring the target's built-in search
// directory in spec.md §6. Unlike the original core.p4, this shim omits a
// top-level NoAction: x4c's action grammar (spec.md §4.3) only accepts an
// ActionDecl inside a control body, so a shared no-op action has nowhere
// top-level to live; a program that wants one declares it in its own
// control.
const CoreP4 = `
extern packet_in {
    void extract<T>(out T hdr);
    void extract<T>(out T variableSizeHeader, in bit<32> variableFieldSizeInBits);
    T lookahead<T>();
    void advance(in bit<32> sizeInBits);
    bit<32> length();
}

extern packet_out {
    void emit<T>(in T hdr);
}

extern Checksum {
    bit<16> run<T>(in T data);
}

error {
    NoError,
    PacketTooShort,
    NoMatch,
    StackOutOfBounds,
    HeaderTooShort,
    ParserTimeout,
    ParserInvalidArgument
}
`

const corePath = "core.p4"
